package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a single staged entry in a customer's cart. Quantity is always
// positive: removal, not a zero-quantity row, represents "not in cart".
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLine is a cart entry joined with current product data for display.
// Price and Stock here are advisory snapshots, not checkout guarantees.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url"`
	Stock     int       `json:"stock"`
}
