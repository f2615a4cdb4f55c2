package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freshcart/internal/domain"
	"freshcart/internal/pricing"
	orderrepo "freshcart/internal/repository/order"
)

// Service creates orders and applies the non-payment lifecycle transitions.
type Service struct {
	repo     ordersRepo
	products productRepo
	policy   pricing.Policy
}

type ordersRepo interface {
	Create(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, trackingNumber, notes string) (*domain.Order, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo orderrepo.Repository, products productRepo, policy pricing.Policy) *Service {
	return &Service{repo: repo, products: products, policy: policy}
}

type ItemInput struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type CreateInput struct {
	Items   []ItemInput            `json:"items"`
	Address domain.ShippingAddress `json:"shippingAddress"`
	Method  string                 `json:"method"`
}

// Create validates the checkout submission, snapshots the referenced
// products, computes pricing, and persists a pending order.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}

	method := domain.PaymentMethod(strings.TrimSpace(in.Method))
	if method == "" {
		method = domain.MethodCard
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: invalid payment method %q", domain.ErrValidation, in.Method)
	}

	if err := validateAddress(in.Address); err != nil {
		return nil, err
	}
	address := in.Address
	if strings.TrimSpace(address.Country) == "" {
		address.Country = "US"
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s not found", domain.ErrValidation, item.ProductID)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s is not available", domain.ErrValidation, product.Name)
		}
		items = append(items, domain.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   item.Quantity,
			Image:      product.Image,
		})
	}

	return s.repo.Create(ctx, orderrepo.CreateOrderInput{
		UserID:  userID,
		Items:   items,
		Address: address,
		Method:  method,
		Pricing: pricing.Calculate(items, s.policy),
	})
}

// Get returns an order to its owner, or to an admin.
func (s *Service) Get(ctx context.Context, userID string, isAdmin bool, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// Cancel lets the owner cancel an order still in pending or confirmed.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return s.repo.Cancel(ctx, orderID)
}

type UpdateStatusInput struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	Notes          string `json:"notes"`
}

// UpdateStatus applies an admin status change. Delivery stamps deliveredAt in
// the store.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in UpdateStatusInput) (*domain.Order, error) {
	status := domain.OrderStatus(strings.TrimSpace(in.Status))
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, in.Status)
	}
	if len(in.Notes) > 500 {
		return nil, fmt.Errorf("%w: notes cannot be more than 500 characters", domain.ErrValidation)
	}
	return s.repo.SetStatus(ctx, orderID, status, strings.TrimSpace(in.TrackingNumber), in.Notes)
}

func validateAddress(a domain.ShippingAddress) error {
	required := []struct {
		field, value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shipping address %s is required", domain.ErrValidation, f.field)
		}
	}
	return nil
}
