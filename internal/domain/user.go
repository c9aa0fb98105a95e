package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed two-variant classification of an authenticated identity.
// There is no third variant and no overlap: admins never touch cart or order
// state, customers never mutate the catalog.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the acting principal attached to a request after token
// verification. Services gate on it before touching any state.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}
