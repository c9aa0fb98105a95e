package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

func (p *Postgres) GetCart(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	query := `SELECT ci.product_id, ci.quantity, pr.title, pr.price, pr.image_url, pr.stock
	          FROM cart_items ci
	          JOIN products pr ON pr.id = ci.product_id
	          WHERE ci.user_id = $1
	          ORDER BY ci.added_at`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ProductID,
			&line.Quantity,
			&line.Title,
			&line.Price,
			&line.ImageURL,
			&line.Stock,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (p *Postgres) GetItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	item := domain.CartItem{ProductID: productID}
	err := p.db.QueryRowContext(ctx,
		`SELECT quantity, added_at FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID).Scan(&item.Quantity, &item.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart item: %w", err)
	}
	return &item, nil
}

func (p *Postgres) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	query := `INSERT INTO cart_items (user_id, product_id, quantity, added_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (user_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	          RETURNING quantity, added_at`

	return p.upsertItem(ctx, query, userID, productID, qty)
}

func (p *Postgres) SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	query := `INSERT INTO cart_items (user_id, product_id, quantity, added_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (user_id, product_id)
	          DO UPDATE SET quantity = EXCLUDED.quantity
	          RETURNING quantity, added_at`

	return p.upsertItem(ctx, query, userID, productID, qty)
}

func (p *Postgres) upsertItem(ctx context.Context, query string, userID, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	item := domain.CartItem{ProductID: productID}
	err := p.db.QueryRowContext(ctx, query, userID, productID, qty).Scan(&item.Quantity, &item.AddedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	return &item, nil
}

func (p *Postgres) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	// Idempotent: zero rows affected is still success.
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
