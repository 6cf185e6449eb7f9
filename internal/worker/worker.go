package worker

import (
	"context"
	"errors"
	"log"

	"ticketshop/internal/broker"
	"ticketshop/internal/service"
	"ticketshop/internal/util"

	"github.com/segmentio/kafka-go"
)

// OrderWorker consumes purchase outcomes for the catalogue's consumer group
// and applies them to orders via the saga
type OrderWorker struct {
	consumer *broker.Consumer
	saga     *service.OrderSaga
}

// NewOrderWorker creates a new order worker
func NewOrderWorker(consumer *broker.Consumer, saga *service.OrderSaga) *OrderWorker {
	return &OrderWorker{
		consumer: consumer,
		saga:     saga,
	}
}

// Start starts the worker
func (w *OrderWorker) Start(ctx context.Context) error {
	log.Println("Starting order worker...")

	return w.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		out, err := broker.DecodePurchaseOutcome(msg.Value)
		if err != nil {
			if errors.Is(err, broker.ErrMalformedMessage) {
				util.OutcomesDroppedTotal.WithLabelValues("malformed").Inc()
				log.Printf("Dropping malformed outcome at offset %d: %v", msg.Offset, err)
				return nil
			}
			return err
		}

		return w.saga.HandlePurchaseOutcome(ctx, out)
	})
}

// Stop stops the worker
func (w *OrderWorker) Stop() error {
	log.Println("Stopping order worker...")
	return w.consumer.Close()
}

// PaymentWorker consumes purchase requests for the payment consumer group
type PaymentWorker struct {
	consumer *broker.Consumer
	payments *service.PaymentService
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(consumer *broker.Consumer, payments *service.PaymentService) *PaymentWorker {
	return &PaymentWorker{
		consumer: consumer,
		payments: payments,
	}
}

// Start starts the payment worker
func (pw *PaymentWorker) Start(ctx context.Context) error {
	log.Println("Starting payment worker...")

	return pw.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		req, err := broker.DecodePurchaseRequest(msg.Value)
		if err != nil {
			if errors.Is(err, broker.ErrMalformedMessage) {
				log.Printf("Dropping malformed purchase request at offset %d: %v", msg.Offset, err)
				return nil
			}
			return err
		}

		return pw.payments.HandlePurchaseRequest(ctx, req)
	})
}

// Stop stops the payment worker
func (pw *PaymentWorker) Stop() error {
	log.Println("Stopping payment worker...")
	return pw.consumer.Close()
}
