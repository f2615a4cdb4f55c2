package catalog

import (
	"context"
	"fmt"
	"strings"

	"freshcart/internal/domain"
	categoryrepo "freshcart/internal/repository/category"
	productrepo "freshcart/internal/repository/product"
)

// Service serves the product and category catalog.
type Service struct {
	products   productRepo
	categories categoryRepo
}

type productRepo interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

func New(products productrepo.Repository, categories categoryrepo.Repository) *Service {
	return &Service{products: products, categories: categories}
}

func (s *Service) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return s.products.List(ctx, categoryID)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, domain.ErrNotFound
	}
	return category, nil
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    *bool  `json:"isActive"`
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return s.categories.Create(ctx, domain.Category{
		Name:        name,
		Description: in.Description,
		Image:       in.Image,
		SortOrder:   in.SortOrder,
		IsActive:    active,
	})
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		existing.Name = name
	}
	if in.Description != "" {
		existing.Description = in.Description
	}
	if in.Image != "" {
		existing.Image = in.Image
	}
	if in.SortOrder != 0 {
		existing.SortOrder = in.SortOrder
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}
	return s.categories.Update(ctx, *existing)
}

// DeleteCategory removes a category unless products still reference it.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCategoryInUse
	}
	return s.categories.Delete(ctx, id)
}
