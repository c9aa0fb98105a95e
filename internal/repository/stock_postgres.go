package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

// execer is satisfied by both *sql.DB and *sql.Tx so the decrement primitive
// can run standalone or inside the checkout transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CurrentStock is the advisory read used for display and pre-checkout hints.
// Its result is never a checkout guarantee: only TryDecrement is
// authoritative.
func (p *Postgres) CurrentStock(ctx context.Context, productID uuid.UUID) (int, error) {
	return currentStock(ctx, p.db, productID)
}

// TryDecrement decrements stock by qty only if enough remains, as a single
// conditional statement. A read-then-write pair here would admit a lost
// update between two concurrent checkouts on the same product.
func (p *Postgres) TryDecrement(ctx context.Context, productID uuid.UUID, qty int) error {
	return tryDecrement(ctx, p.db, productID, qty)
}

func currentStock(ctx context.Context, q execer, productID uuid.UUID) (int, error) {
	var stock int
	err := q.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query stock: %w", err)
	}
	return stock, nil
}

func tryDecrement(ctx context.Context, q execer, productID uuid.UUID, qty int) error {
	res, err := q.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock rows affected: %w", err)
	}
	if affected == 0 {
		available, stockErr := currentStock(ctx, q, productID)
		if stockErr != nil {
			return stockErr
		}
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: available,
		}
	}
	return nil
}
