package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

func TestProductService_CustomerCannotMutateCatalog(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store)
	ctx := context.Background()
	productID := addProduct(t, store, 10.00, 5)
	cust := customer()

	_, err := svc.CreateProduct(ctx, cust, &domain.Product{Title: "X", Price: 1})
	assert.ErrorIs(t, err, domain.ErrAdminOnly)

	newTitle := "Hacked"
	_, err = svc.UpdateProduct(ctx, cust, productID, domain.ProductUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, domain.ErrAdminOnly)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, cust, productID), domain.ErrAdminOnly)

	// Catalog untouched.
	product, err := svc.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Title)
}

func TestProductService_AdminCRUD(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store)
	ctx := context.Background()
	adm := admin()

	created, err := svc.CreateProduct(ctx, adm, &domain.Product{
		Title:    "Headphones",
		Price:    299.99,
		Stock:    12,
		Category: "electronics",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	newStock := 4
	updated, err := svc.UpdateProduct(ctx, adm, created.ID, domain.ProductUpdate{Stock: &newStock})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, "Headphones", updated.Title)

	require.NoError(t, svc.DeleteProduct(ctx, adm, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductService_Validation(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store)
	ctx := context.Background()
	adm := admin()

	var validation *domain.ValidationError

	_, err := svc.CreateProduct(ctx, adm, &domain.Product{Price: 1})
	assert.ErrorAs(t, err, &validation)

	_, err = svc.CreateProduct(ctx, adm, &domain.Product{Title: "X", Price: -1})
	assert.ErrorAs(t, err, &validation)

	productID := addProduct(t, store, 10.00, 5)
	negative := -3
	_, err = svc.UpdateProduct(ctx, adm, productID, domain.ProductUpdate{Stock: &negative})
	assert.ErrorAs(t, err, &validation)
}

func TestProductService_ListFilters(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store)
	ctx := context.Background()
	adm := admin()

	_, err := svc.CreateProduct(ctx, adm, &domain.Product{Title: "Running Shoes", Price: 159.99, Category: "sports"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, adm, &domain.Product{Title: "Coffee Maker", Price: 89.99, Category: "home"})
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx, domain.ProductFilter{Category: "sports"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Running Shoes", products[0].Title)

	products, err = svc.ListProducts(ctx, domain.ProductFilter{Search: "coffee"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Coffee Maker", products[0].Title)

	products, err = svc.ListProducts(ctx, domain.ProductFilter{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
