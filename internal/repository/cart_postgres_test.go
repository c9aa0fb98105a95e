package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

func TestAddItem_SumsOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &Postgres{db: db}
	userID, productID := uuid.New(), uuid.New()

	mock.ExpectQuery(`DO UPDATE SET quantity = cart_items.quantity \+ EXCLUDED.quantity`).
		WithArgs(userID, productID, 2).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "added_at"}).AddRow(5, time.Now()))

	item, err := p.AddItem(context.Background(), userID, productID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetQuantity_ReplacesOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &Postgres{db: db}
	userID, productID := uuid.New(), uuid.New()

	mock.ExpectQuery(`DO UPDATE SET quantity = EXCLUDED.quantity`).
		WithArgs(userID, productID, 4).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "added_at"}).AddRow(4, time.Now()))

	item, err := p.SetQuantity(context.Background(), userID, productID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &Postgres{db: db}
	userID, productID := uuid.New(), uuid.New()

	mock.ExpectQuery(`INSERT INTO cart_items`).
		WithArgs(userID, productID, 1).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = p.AddItem(context.Background(), userID, productID, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveItem_AbsentLineIsNoError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &Postgres{db: db}
	userID, productID := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM cart_items WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs(userID, productID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, p.RemoveItem(context.Background(), userID, productID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItem_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &Postgres{db: db}
	userID, productID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT quantity, added_at FROM cart_items`).
		WithArgs(userID, productID).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "added_at"}))

	_, err = p.GetItem(context.Background(), userID, productID)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
