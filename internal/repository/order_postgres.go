package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

// PlaceOrder is the atomic commit phase of checkout. Everything happens in
// one transaction against the store of record:
//
//  1. snapshot the cart joined with live product prices, in ascending
//     product id order (stable lock order across concurrent checkouts),
//  2. conditionally decrement stock per line,
//  3. insert the order and its lines carrying the snapshot prices,
//  4. clear the cart.
//
// A shortfall on any line aborts the whole unit with the product and its
// availability; infrastructure failures surface as TransientStoreError. In
// both cases the cart and stock are exactly as they were before the attempt.
func (p *Postgres) PlaceOrder(ctx context.Context, userID uuid.UUID, shipping domain.ShippingDetails) (*domain.Order, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.TransientStoreError{Err: err}
	}
	// Released on every exit path; a no-op after Commit.
	defer func() { _ = tx.Rollback() }()

	lines, err := snapshotCart(ctx, tx, userID)
	if err != nil {
		return nil, classifyTxError(err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	for _, line := range lines {
		if err := tryDecrement(ctx, tx, line.ProductID, line.Quantity); err != nil {
			var insufficient *domain.InsufficientStockError
			if errors.As(err, &insufficient) {
				return nil, insufficient
			}
			return nil, classifyTxError(err)
		}
	}

	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Shipping:  shipping,
		Lines:     lines,
		CreatedAt: time.Now().UTC(),
	}
	for _, line := range lines {
		order.Total += line.UnitPrice * float64(line.Quantity)
	}

	if err := insertOrder(ctx, tx, order); err != nil {
		return nil, classifyTxError(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, classifyTxError(fmt.Errorf("clear cart: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.TransientStoreError{Err: err}
	}
	return order, nil
}

// snapshotCart reads the cart joined with live prices inside the checkout
// transaction, so the price each line carries is pinned in the same atomic
// unit as the stock decrement. Ascending product id keeps the decrement order
// stable across concurrent checkouts.
func snapshotCart(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]domain.OrderLine, error) {
	query := `SELECT ci.product_id, ci.quantity, pr.price
	          FROM cart_items ci
	          JOIN products pr ON pr.id = ci.product_id
	          WHERE ci.user_id = $1
	          ORDER BY ci.product_id`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan snapshot line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `INSERT INTO orders (id, user_id, shipping_name, shipping_address, shipping_city,
	                              shipping_postal_code, shipping_country, total, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Shipping.Name,
		order.Shipping.Address,
		order.Shipping.City,
		order.Shipping.PostalCode,
		order.Shipping.Country,
		order.Total,
		order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
			order.ID, line.ProductID, line.Quantity, line.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, user_id, shipping_name, shipping_address, shipping_city,
	                 shipping_postal_code, shipping_country, total, created_at
	          FROM orders WHERE id = $1 AND user_id = $2`

	var order domain.Order
	err := p.db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Shipping.Name,
		&order.Shipping.Address,
		&order.Shipping.City,
		&order.Shipping.PostalCode,
		&order.Shipping.Country,
		&order.Total,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT product_id, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY product_id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return &order, nil
}

func (p *Postgres) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT id, user_id, shipping_name, shipping_address, shipping_city,
	                 shipping_postal_code, shipping_country, total, created_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	byID := make(map[uuid.UUID]*domain.Order)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Shipping.Name,
			&order.Shipping.Address,
			&order.Shipping.City,
			&order.Shipping.PostalCode,
			&order.Shipping.Country,
			&order.Total,
			&order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
		byID[order.ID] = &order
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lineQuery := `SELECT oi.order_id, oi.product_id, oi.quantity, oi.unit_price
	              FROM order_items oi
	              JOIN orders o ON o.id = oi.order_id
	              WHERE o.user_id = $1
	              ORDER BY oi.product_id`

	lineRows, err := p.db.QueryContext(ctx, lineQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID uuid.UUID
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if order, ok := byID[orderID]; ok {
			order.Lines = append(order.Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func classifyTxError(err error) error {
	if isTransient(err) {
		return &domain.TransientStoreError{Err: err}
	}
	return err
}
