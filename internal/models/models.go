package models

import "time"

// Product is a purchasable ticket product in the catalogue
type Product struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Price        float64   `db:"price" json:"price"`
	Zones        string    `db:"zones" json:"zones"`
	TicketClass  string    `db:"ticket_class" json:"ticket_class"`
	ValidityDays int       `db:"validity_days" json:"validity_days"`
	MinAge       *int      `db:"min_age" json:"min_age,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Order is one purchase attempt. It is owned by the catalogue side: created
// PENDING by the saga and finalized exactly once by the outcome handler or the
// compensation path. Terminal states are never overwritten.
type Order struct {
	ID         int64     `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	ProductID  int64     `db:"product_id" json:"product_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	UnitPrice  float64   `db:"unit_price" json:"unit_price"`
	TotalPrice float64   `db:"total_price" json:"total_price"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Terminal reports whether the order has reached a final status
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusAccepted || o.Status == OrderStatusRejected
}

// Transaction is the payment side's private record of a decision. Its ID is the
// order id, which doubles as the saga correlation id. Append-only.
type Transaction struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Price     float64   `db:"price" json:"price"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending  = "PENDING"
	OrderStatusAccepted = "ACCEPTED"
	OrderStatusRejected = "REJECTED"
)
