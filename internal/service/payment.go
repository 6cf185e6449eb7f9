package service

import (
	"context"
	"fmt"
	"math/rand"

	"ticketshop/internal/models"
	"ticketshop/internal/store"
	"ticketshop/internal/util"

	"go.uber.org/zap"
)

// OutcomePublisher publishes purchase outcomes back to the catalogue side
type OutcomePublisher interface {
	PublishPurchaseOutcome(ctx context.Context, out *models.PurchaseOutcome) error
}

// DecisionPolicy decides whether a purchase request is accepted. The protocol
// does not depend on the policy being deterministic; real payment processing
// plugs in here.
type DecisionPolicy func(req *models.PurchaseRequest) string

// RandomDecision accepts or rejects with even odds, a stand-in for a real
// payment processor
func RandomDecision(_ *models.PurchaseRequest) string {
	if rand.Intn(2) == 0 {
		return models.OrderStatusAccepted
	}
	return models.OrderStatusRejected
}

// PaymentService consumes purchase requests, records a decision once per
// order id, and publishes the outcome. Redelivered requests re-publish the
// already-recorded decision instead of making a new one.
type PaymentService struct {
	store     *store.Store
	publisher OutcomePublisher
	policy    DecisionPolicy
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service with the given decision policy
func NewPaymentService(store *store.Store, publisher OutcomePublisher, policy DecisionPolicy) *PaymentService {
	if policy == nil {
		policy = RandomDecision
	}
	return &PaymentService{
		store:     store,
		publisher: publisher,
		policy:    policy,
		logger:    util.GetLogger(),
	}
}

// HandlePurchaseRequest processes one delivered purchase request
func (ps *PaymentService) HandlePurchaseRequest(ctx context.Context, req *models.PurchaseRequest) error {
	ctx, span := util.StartOrderSpan(ctx, "PaymentService.HandlePurchaseRequest", req.OrderID)
	defer span.End()

	status := ps.policy(req)

	tx := &models.Transaction{
		ID:       req.OrderID,
		Username: req.Username,
		Price:    req.TotalPrice,
		Status:   status,
	}

	inserted, err := ps.store.CreateTransaction(ctx, tx)
	if err != nil {
		// No outcome is published; redelivery or the pending sweep recovers
		return fmt.Errorf("failed to persist transaction for order %d: %w", req.OrderID, err)
	}

	if !inserted {
		existing, err := ps.store.GetTransactionByID(ctx, req.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load existing transaction for order %d: %w", req.OrderID, err)
		}
		if existing == nil {
			return fmt.Errorf("transaction for order %d vanished after conflict", req.OrderID)
		}

		util.PaymentDuplicatesTotal.Inc()
		ps.logger.Info("Duplicate purchase request, reusing recorded decision",
			util.OrderField(req.OrderID),
			zap.String("status", existing.Status))
		status = existing.Status
	} else {
		util.PaymentDecisionsTotal.WithLabelValues(status).Inc()
		ps.logger.Info("Payment decision recorded",
			util.OrderField(req.OrderID),
			zap.Float64("price", req.TotalPrice),
			zap.String("status", status))
	}

	out := &models.PurchaseOutcome{
		OrderID: req.OrderID,
		Status:  status,
	}

	if err := ps.publisher.PublishPurchaseOutcome(ctx, out); err != nil {
		// The decision is recorded but the catalogue never hears it; the
		// order stays PENDING until the reconciliation sweep rejects it
		return fmt.Errorf("failed to publish outcome for order %d: %w", req.OrderID, err)
	}

	return nil
}
