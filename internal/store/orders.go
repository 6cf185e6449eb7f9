package store

import (
	"context"
	"database/sql"
	"time"

	"ticketshop/internal/models"
)

// CreateOrder inserts a new order row and fills in the assigned id
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (username, product_id, quantity, unit_price, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, order, query,
		order.Username, order.ProductID, order.Quantity, order.UnitPrice, order.TotalPrice, order.Status)
}

// GetOrderByID retrieves an order by ID, nil when absent
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUsername retrieves orders for a buyer
func (s *Store) GetOrdersByUsername(ctx context.Context, username string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE username = $1 ORDER BY created_at DESC", username)
	return orders, err
}

// FinalizeOrder moves a PENDING order to a terminal status. It reports false
// when no row changed, either because the order does not exist or because it
// is already terminal. Terminal rows are never overwritten.
func (s *Store) FinalizeOrder(ctx context.Context, orderID int64, status string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		status, orderID, models.OrderStatusPending)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetStalePendingOrders lists PENDING orders older than the cutoff, for the
// reconciliation sweep
func (s *Store) GetStalePendingOrders(ctx context.Context, olderThan time.Duration) ([]models.Order, error) {
	var orders []models.Order
	cutoff := time.Now().Add(-olderThan)
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 AND created_at < $2 ORDER BY id",
		models.OrderStatusPending, cutoff)
	return orders, err
}
