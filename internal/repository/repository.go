package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProductRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// StockLedger is the authoritative stock primitive. TryDecrement must be a
// single atomic conditional step: decrement only if enough stock remains,
// never a separate read followed by a write.
type StockLedger interface {
	CurrentStock(ctx context.Context, productID uuid.UUID) (int, error)
	// TryDecrement returns *domain.InsufficientStockError (carrying the
	// current availability) when stock < qty, leaving stock untouched.
	TryDecrement(ctx context.Context, productID uuid.UUID, qty int) error
}

type CartRepository interface {
	// GetCart returns the cart joined with current product data.
	GetCart(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	GetItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error)
	// AddItem sums quantities when the product is already staged.
	AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error)
	// SetQuantity replaces the stored quantity (qty must be positive; callers
	// translate qty <= 0 into RemoveItem).
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error)
	// RemoveItem is idempotent: removing an absent item is a no-op success.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type OrderRepository interface {
	// PlaceOrder executes the checkout commit as one atomic unit: snapshot the
	// cart with live prices, conditionally decrement stock per line in
	// ascending product id order, persist the order and its lines, clear the
	// cart. Any failure rolls the whole unit back.
	PlaceOrder(ctx context.Context, userID uuid.UUID, shipping domain.ShippingDetails) (*domain.Order, error)
	// GetOrder is scoped to the owning user: another user's order id reads as
	// not found.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

// Store aggregates every repository over one backing store so the checkout
// unit and the cart staging area share a single store of record.
type Store interface {
	UserRepository
	ProductRepository
	StockLedger
	CartRepository
	OrderRepository
	Close() error
}
