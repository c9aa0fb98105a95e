package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/domain"
	"github.com/engineermuzamil/modernstore/internal/repository"
)

// CartViewInvalidator drops a customer's cached cart view and marks any
// in-flight cache fill for that customer stale.
type CartViewInvalidator interface {
	InvalidateCartView(userID uuid.UUID)
}

// CheckoutService coordinates order placement. Preconditions fail fast with
// no mutation; the commit itself is delegated to the store's atomic
// PlaceOrder unit, so a failure at any point leaves cart and stock exactly as
// they were before the attempt.
type CheckoutService struct {
	orders repository.OrderRepository
	carts  CartViewInvalidator
}

func NewCheckoutService(store repository.Store, carts CartViewInvalidator) *CheckoutService {
	return &CheckoutService{
		orders: store,
		carts:  carts,
	}
}

func (s *CheckoutService) PlaceOrder(ctx context.Context, identity domain.Identity, shipping domain.ShippingDetails) (*domain.Order, error) {
	if err := auth.RequireCustomer(identity); err != nil {
		return nil, err
	}
	if err := validateShipping(shipping); err != nil {
		return nil, err
	}

	order, err := s.orders.PlaceOrder(ctx, identity.UserID, shipping)
	if err != nil {
		return nil, err
	}

	// The cart rows are gone; drop the stale cached view.
	if s.carts != nil {
		s.carts.InvalidateCartView(identity.UserID)
	}
	return order, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, identity domain.Identity, orderID uuid.UUID) (*domain.Order, error) {
	if err := auth.RequireCustomer(identity); err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, identity.UserID, orderID)
}

func (s *CheckoutService) ListOrders(ctx context.Context, identity domain.Identity) ([]*domain.Order, error) {
	if err := auth.RequireCustomer(identity); err != nil {
		return nil, err
	}
	return s.orders.ListOrdersByUser(ctx, identity.UserID)
}

func validateShipping(shipping domain.ShippingDetails) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", shipping.Name},
		{"address", shipping.Address},
		{"city", shipping.City},
		{"postal_code", shipping.PostalCode},
		{"country", shipping.Country},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return &domain.ValidationError{Field: field.name, Reason: "is required"}
		}
	}
	return nil
}
