package broker

import (
	"encoding/json"
	"errors"
	"fmt"

	"ticketshop/internal/models"
)

// ErrMalformedMessage marks payloads that cannot be decoded into their topic's
// message type. Handlers drop such messages after logging.
var ErrMalformedMessage = errors.New("malformed message payload")

// EncodePurchaseRequest serializes a purchase request for the request topic
func EncodePurchaseRequest(req *models.PurchaseRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase request: %w", err)
	}
	return data, nil
}

// DecodePurchaseRequest deserializes a request-topic payload
func DecodePurchaseRequest(data []byte) (*models.PurchaseRequest, error) {
	var req models.PurchaseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if req.OrderID == 0 {
		return nil, fmt.Errorf("%w: missing order_id", ErrMalformedMessage)
	}
	return &req, nil
}

// EncodePurchaseOutcome serializes a purchase outcome for the outcome topic
func EncodePurchaseOutcome(out *models.PurchaseOutcome) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase outcome: %w", err)
	}
	return data, nil
}

// DecodePurchaseOutcome deserializes an outcome-topic payload
func DecodePurchaseOutcome(data []byte) (*models.PurchaseOutcome, error) {
	var out models.PurchaseOutcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if out.OrderID == 0 {
		return nil, fmt.Errorf("%w: missing order_id", ErrMalformedMessage)
	}
	if out.Status != models.OrderStatusAccepted && out.Status != models.OrderStatusRejected {
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformedMessage, out.Status)
	}
	return &out, nil
}
