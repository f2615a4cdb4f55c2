package product

import (
	"context"

	"freshcart/internal/domain"
)

type Repository interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}
