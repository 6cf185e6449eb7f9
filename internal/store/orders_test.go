package store

import (
	"context"
	"testing"
	"time"

	"ticketshop/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreTest(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateOrder_AssignsID(t *testing.T) {
	st, mock := setupStoreTest(t)

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("alice", int64(1), 5, 25.0, 125.0, models.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, time.Now()))

	order := &models.Order{
		Username:   "alice",
		ProductID:  1,
		Quantity:   5,
		UnitPrice:  25.0,
		TotalPrice: 125.0,
		Status:     models.OrderStatusPending,
	}

	err := st.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeOrder_OnlyMovesPendingRows(t *testing.T) {
	st, mock := setupStoreTest(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(models.OrderStatusAccepted, int64(42), models.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := st.FinalizeOrder(context.Background(), 42, models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.True(t, changed)

	// A terminal row matches no PENDING predicate and stays untouched
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(models.OrderStatusRejected, int64(42), models.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err = st.FinalizeOrder(context.Background(), 42, models.OrderStatusRejected)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransaction_InsertOnce(t *testing.T) {
	st, mock := setupStoreTest(t)

	tx := &models.Transaction{ID: 42, Username: "alice", Price: 125.0, Status: models.OrderStatusAccepted}

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(int64(42), "alice", 125.0, models.OrderStatusAccepted).
		WillReturnResult(sqlmock.NewResult(1, 1))

	inserted, err := st.CreateTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Redelivery conflicts on the primary key and affects no rows
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(int64(42), "alice", 125.0, models.OrderStatusAccepted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err = st.CreateTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStalePendingOrders(t *testing.T) {
	st, mock := setupStoreTest(t)

	mock.ExpectQuery("SELECT \\* FROM orders WHERE status = \\$1 AND created_at <").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "product_id", "quantity", "unit_price", "total_price", "status", "created_at"}).
			AddRow(7, "bob", 1, 2, 25.0, 50.0, models.OrderStatusPending, time.Now().Add(-time.Hour)))

	orders, err := st.GetStalePendingOrders(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
