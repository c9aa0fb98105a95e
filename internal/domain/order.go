package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine carries the price observed at checkout time. It is decoupled from
// later catalog price edits.
type OrderLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// Order is an append-only historical fact: created together with its lines in
// one atomic unit and never mutated afterward.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Shipping  ShippingDetails `json:"shipping"`
	Total     float64         `json:"total"`
	Lines     []OrderLine     `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
}

type ShippingDetails struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}
