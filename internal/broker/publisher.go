package broker

import (
	"context"
	"fmt"
	"log"

	"ticketshop/internal/models"
)

// EventPublisher exposes the two domain publishes over their dedicated topics
type EventPublisher struct {
	requests *Producer
	outcomes *Producer
}

// NewEventPublisher creates a publisher over the request and outcome producers
func NewEventPublisher(requests, outcomes *Producer) *EventPublisher {
	return &EventPublisher{requests: requests, outcomes: outcomes}
}

// PublishPurchaseRequest publishes a purchase request keyed by its order id
func (ep *EventPublisher) PublishPurchaseRequest(ctx context.Context, req *models.PurchaseRequest) error {
	payload, err := EncodePurchaseRequest(req)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("order-%d", req.OrderID)
	if err := ep.requests.Publish(ctx, key, payload); err != nil {
		return err
	}

	log.Printf("Published purchase request: order_id=%d", req.OrderID)
	return nil
}

// PublishPurchaseOutcome publishes a purchase outcome keyed by its order id
func (ep *EventPublisher) PublishPurchaseOutcome(ctx context.Context, out *models.PurchaseOutcome) error {
	payload, err := EncodePurchaseOutcome(out)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("order-%d", out.OrderID)
	if err := ep.outcomes.Publish(ctx, key, payload); err != nil {
		return err
	}

	log.Printf("Published purchase outcome: order_id=%d, status=%s", out.OrderID, out.Status)
	return nil
}
