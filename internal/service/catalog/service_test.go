package catalog

import (
	"context"
	"errors"
	"testing"

	"freshcart/internal/domain"
)

type stubProducts struct {
	product *domain.Product
	err     error
	count   int
	countErr error
}

func (s *stubProducts) List(_ context.Context, _ string) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubProducts) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubProducts) CountByCategory(_ context.Context, _ string) (int, error) {
	return s.count, s.countErr
}

type stubCategories struct {
	category  *domain.Category
	getErr    error
	created   *domain.Category
	createErr error
	deleteErr error
	deleted   string
	lastSaved domain.Category
}

func (s *stubCategories) List(_ context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (s *stubCategories) GetByID(_ context.Context, _ string) (*domain.Category, error) {
	return s.category, s.getErr
}

func (s *stubCategories) Create(_ context.Context, _ domain.Category) (*domain.Category, error) {
	return s.created, s.createErr
}

func (s *stubCategories) Update(_ context.Context, c domain.Category) (*domain.Category, error) {
	s.lastSaved = c
	return &c, nil
}

func (s *stubCategories) Delete(_ context.Context, id string) error {
	s.deleted = id
	return s.deleteErr
}

func TestGetProductHidesInactive(t *testing.T) {
	svc := &Service{products: &stubProducts{product: &domain.Product{ID: "p1", IsActive: false}}}
	_, err := svc.GetProduct(context.Background(), "p1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc := &Service{categories: &stubCategories{}}
	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "  "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc := &Service{categories: &stubCategories{createErr: domain.ErrAlreadyExists}}
	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Produce"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	categories := &stubCategories{category: &domain.Category{ID: "c1", Name: "Produce", IsActive: true}}
	svc := &Service{
		products:   &stubProducts{count: 3},
		categories: categories,
	}
	err := svc.DeleteCategory(context.Background(), "c1")
	if !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}
	if categories.deleted != "" {
		t.Fatalf("delete reached the store despite references")
	}
}

func TestDeleteCategoryUnreferenced(t *testing.T) {
	categories := &stubCategories{category: &domain.Category{ID: "c1", Name: "Produce", IsActive: true}}
	svc := &Service{
		products:   &stubProducts{count: 0},
		categories: categories,
	}
	if err := svc.DeleteCategory(context.Background(), "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if categories.deleted != "c1" {
		t.Fatalf("delete not delegated")
	}
}

func TestUpdateCategoryPatchesFields(t *testing.T) {
	categories := &stubCategories{category: &domain.Category{ID: "c1", Name: "Produce", SortOrder: 1, IsActive: true}}
	svc := &Service{categories: categories}

	inactive := false
	got, err := svc.UpdateCategory(context.Background(), "c1", CategoryInput{Description: "fresh", IsActive: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Produce" || got.Description != "fresh" || got.IsActive {
		t.Fatalf("unexpected category %+v", got)
	}
}
