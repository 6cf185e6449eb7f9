package models

// Wire messages exchanged over the bus. Both are immutable once published and
// carry the order id as the correlation id that matches an outcome back to the
// order that caused it.

// PurchaseRequest is published by the catalogue side and consumed by the
// payment decision consumer group
type PurchaseRequest struct {
	Username       string  `json:"username"`
	OrderID        int64   `json:"order_id"`
	TotalPrice     float64 `json:"total_price"`
	CardNumber     int64   `json:"card_number"`
	ExpirationDate string  `json:"expiration_date"`
	CVV            int     `json:"cvv"`
	CardHolder     string  `json:"card_holder"`
}

// PurchaseOutcome is published by the payment side and consumed by the
// catalogue's outcome consumer group. Status is ACCEPTED or REJECTED.
type PurchaseOutcome struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}
