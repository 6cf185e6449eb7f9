package service

import (
	"context"
	"fmt"
	"time"

	"ticketshop/internal/models"
	"ticketshop/internal/store"
	"ticketshop/internal/util"

	"go.uber.org/zap"
)

// TicketIssuer is the travel service boundary
type TicketIssuer interface {
	IssueTickets(ctx context.Context, req *IssueTicketsRequest) ([]IssuedTicket, error)
}

// ProfileSource is the user profile boundary. Implementations may signal an
// absent profile either as an error or as a nil profile; both fail eligibility.
type ProfileSource interface {
	GetProfile(ctx context.Context, username string) (*Profile, error)
}

// RequestPublisher publishes purchase requests to the payment side
type RequestPublisher interface {
	PublishPurchaseRequest(ctx context.Context, req *models.PurchaseRequest) error
}

// OrderSaga coordinates a purchase from request to terminal status. The
// synchronous half validates preconditions, issues tickets, writes the PENDING
// order and publishes the payment request, compensating the write when the
// publish fails. The asynchronous half consumes outcomes and finalizes the
// order idempotently.
type OrderSaga struct {
	store     *store.Store
	catalog   *CatalogClient
	tickets   TicketIssuer
	profiles  ProfileSource
	publisher RequestPublisher
	logger    *zap.Logger
}

// NewOrderSaga creates a new order saga
func NewOrderSaga(
	store *store.Store,
	catalog *CatalogClient,
	tickets TicketIssuer,
	profiles ProfileSource,
	publisher RequestPublisher,
) *OrderSaga {
	return &OrderSaga{
		store:     store,
		catalog:   catalog,
		tickets:   tickets,
		profiles:  profiles,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// PurchaseTicketRequest is the caller-facing purchase payload
type PurchaseTicketRequest struct {
	Quantity       int    `json:"quantity" binding:"required,min=1"`
	CardNumber     int64  `json:"card_number" binding:"required"`
	ExpirationDate string `json:"expiration_date" binding:"required"`
	CVV            int    `json:"cvv" binding:"required"`
	CardHolder     string `json:"card_holder" binding:"required"`
}

// PurchaseTicketResponse is returned while the saga is still in flight
type PurchaseTicketResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// Purchase runs the synchronous half of the saga. The caller observes either
// a rejection or a PENDING order; the payment result arrives asynchronously.
func (s *OrderSaga) Purchase(ctx context.Context, productID int64, username string, req *PurchaseTicketRequest) (*PurchaseTicketResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderSaga.Purchase")
	defer span.End()

	util.PurchaseAttemptsTotal.Inc()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		util.PurchaseRejectedTotal.WithLabelValues("catalog_error").Inc()
		return nil, fmt.Errorf("failed to look up product %d: %w", productID, err)
	}
	if product == nil {
		util.PurchaseRejectedTotal.WithLabelValues("unknown_product").Inc()
		return nil, fmt.Errorf("product %d not found", productID)
	}

	// Eligibility is a precondition, never a compensable step
	if product.MinAge != nil {
		if err := s.checkEligibility(ctx, username, *product.MinAge); err != nil {
			util.PurchaseRejectedTotal.WithLabelValues("ineligible").Inc()
			return nil, err
		}
	}

	validUntil := time.Now().AddDate(0, 0, product.ValidityDays)
	issued, err := s.tickets.IssueTickets(ctx, &IssueTicketsRequest{
		Quantity:    req.Quantity,
		Zones:       product.Zones,
		TicketClass: product.TicketClass,
		ValidUntil:  validUntil,
		Username:    username,
	})
	if err != nil {
		util.PurchaseRejectedTotal.WithLabelValues("issuance_failed").Inc()
		return nil, fmt.Errorf("ticket issuance failed: %w", err)
	}
	if len(issued) == 0 {
		// An empty issuance must abort before the order write; a PENDING
		// order with zero tickets would never be fulfillable
		util.PurchaseRejectedTotal.WithLabelValues("issuance_empty").Inc()
		return nil, fmt.Errorf("ticket issuance returned no tickets for product %d", product.ID)
	}

	order := &models.Order{
		Username:   username,
		ProductID:  product.ID,
		Quantity:   req.Quantity,
		UnitPrice:  product.Price,
		TotalPrice: product.Price * float64(req.Quantity),
		Status:     models.OrderStatusPending,
	}

	// The order row must exist before any message references its id
	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.PurchaseRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersPendingTotal.Inc()
	s.logger.Info("Order created",
		util.OrderField(order.ID),
		util.BuyerField(username),
		zap.Int("tickets", len(issued)))

	msg := &models.PurchaseRequest{
		Username:       username,
		OrderID:        order.ID,
		TotalPrice:     order.TotalPrice,
		CardNumber:     req.CardNumber,
		ExpirationDate: req.ExpirationDate,
		CVV:            req.CVV,
		CardHolder:     req.CardHolder,
	}

	if err := s.publisher.PublishPurchaseRequest(ctx, msg); err != nil {
		s.compensate(ctx, order.ID)
		util.PurchaseRejectedTotal.WithLabelValues("publish_failed").Inc()
		return nil, fmt.Errorf("failed to publish purchase request: %w", err)
	}

	return &PurchaseTicketResponse{
		OrderID: order.ID,
		Status:  models.OrderStatusPending,
	}, nil
}

// compensate rejects an order whose purchase request never reached the bus.
// Without this the row would sit PENDING with no outcome ever coming.
func (s *OrderSaga) compensate(ctx context.Context, orderID int64) {
	changed, err := s.store.FinalizeOrder(ctx, orderID, models.OrderStatusRejected)
	if err != nil {
		s.logger.Error("Compensation failed, order left pending",
			util.OrderField(orderID),
			zap.Error(err))
		return
	}
	if changed {
		util.OrdersCompensatedTotal.Inc()
		s.logger.Warn("Order rejected by compensation", util.OrderField(orderID))
	}
}

// checkEligibility fetches the buyer's profile and enforces the product's age
// bound. A missing profile or date of birth fails the check.
func (s *OrderSaga) checkEligibility(ctx context.Context, username string, minAge int) error {
	profile, err := s.profiles.GetProfile(ctx, username)
	if err != nil {
		return fmt.Errorf("eligibility check failed: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("eligibility check failed: no profile for %s", username)
	}
	if profile.DateOfBirth == nil {
		return fmt.Errorf("eligibility check failed: no date of birth on profile %s", username)
	}

	if age := yearsSince(*profile.DateOfBirth, time.Now()); age < minAge {
		return fmt.Errorf("buyer %s is %d, product requires age %d", username, age, minAge)
	}
	return nil
}

// HandlePurchaseOutcome applies a payment outcome to its order. Unknown ids
// and already-terminal orders are dropped without error: under at-least-once
// delivery both are expected, not exceptional.
func (s *OrderSaga) HandlePurchaseOutcome(ctx context.Context, out *models.PurchaseOutcome) error {
	ctx, span := util.StartOrderSpan(ctx, "OrderSaga.HandlePurchaseOutcome", out.OrderID)
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, out.OrderID)
	if err != nil {
		return fmt.Errorf("failed to look up order %d: %w", out.OrderID, err)
	}
	if order == nil {
		util.OutcomesDroppedTotal.WithLabelValues("unknown_order").Inc()
		s.logger.Info("Dropping outcome for unknown order", util.OrderField(out.OrderID))
		return nil
	}
	if order.Terminal() {
		util.OutcomesDroppedTotal.WithLabelValues("already_terminal").Inc()
		s.logger.Info("Dropping outcome for finalized order",
			util.OrderField(out.OrderID),
			zap.String("status", order.Status))
		return nil
	}

	changed, err := s.store.FinalizeOrder(ctx, out.OrderID, out.Status)
	if err != nil {
		return fmt.Errorf("failed to finalize order %d: %w", out.OrderID, err)
	}
	if !changed {
		// Lost the race against a concurrent finalize; same as already-terminal
		util.OutcomesDroppedTotal.WithLabelValues("already_terminal").Inc()
		return nil
	}

	util.OrdersFinalizedTotal.WithLabelValues(out.Status).Inc()
	s.logger.Info("Order finalized",
		util.OrderField(out.OrderID),
		zap.String("status", out.Status))
	return nil
}

// GetOrder retrieves an order by ID, nil when absent
func (s *OrderSaga) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// GetOrders retrieves a buyer's orders, newest first
func (s *OrderSaga) GetOrders(ctx context.Context, username string) ([]models.Order, error) {
	return s.store.GetOrdersByUsername(ctx, username)
}

func yearsSince(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
