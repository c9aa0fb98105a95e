package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

// CartCache holds the joined cart view for display reads. It is best-effort
// only: checkout never consults it.
type CartCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	Set(ctx context.Context, userID uuid.UUID, lines []domain.CartLine) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

var ErrCacheMiss = errors.New("cache miss")
