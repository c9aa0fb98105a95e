package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/domain"
	"github.com/engineermuzamil/modernstore/internal/repository"
)

// ProductService covers catalog reads (public) and catalog mutations
// (admin-gated).
type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(store repository.Store) *ProductService {
	return &ProductService{products: store}
}

func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.products.ListProducts(ctx, filter)
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *ProductService) CreateProduct(ctx context.Context, identity domain.Identity, product *domain.Product) (*domain.Product, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.ID = uuid.New()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, identity domain.Identity, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if update.Stock != nil && *update.Stock < 0 {
		return nil, &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	return s.products.UpdateProduct(ctx, id, update)
}

func (s *ProductService) DeleteProduct(ctx context.Context, identity domain.Identity, id uuid.UUID) error {
	if err := auth.RequireAdmin(identity); err != nil {
		return err
	}
	return s.products.DeleteProduct(ctx, id)
}

func validateProduct(product *domain.Product) error {
	if product.Title == "" {
		return &domain.ValidationError{Field: "title", Reason: "is required"}
	}
	if product.Price < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if product.Stock < 0 {
		return &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	return nil
}
