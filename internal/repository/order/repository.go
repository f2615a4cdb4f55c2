package order

import (
	"context"

	"freshcart/internal/domain"
)

type CreateOrderInput struct {
	UserID  string
	Items   []domain.OrderItem
	Address domain.ShippingAddress
	Method  domain.PaymentMethod
	Pricing domain.Pricing
}

// Repository persists orders. Transition methods are atomic per order:
// each one is a single conditional UPDATE, so concurrent transitions on the
// same order cannot interleave into a half-applied state.
type Repository interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)

	// SetPaymentIntent stores the gateway intent id on a not-yet-paid order.
	SetPaymentIntent(ctx context.Context, orderID, intentID string) error
	// MarkPaid transitions pending/failed -> paid and confirms the order.
	// Calling it again for a paid intent returns the order unchanged;
	// a refunded order returns domain.ErrRefunded.
	MarkPaid(ctx context.Context, intentID, transactionID string) (*domain.Order, error)
	// MarkFailed transitions pending -> failed; a paid order is left alone.
	MarkFailed(ctx context.Context, intentID string) error
	// MarkRefunded transitions paid -> refunded and cancels the order.
	MarkRefunded(ctx context.Context, orderID string) (*domain.Order, error)
	// Cancel transitions pending/confirmed -> cancelled.
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, trackingNumber, notes string) (*domain.Order, error)
}
