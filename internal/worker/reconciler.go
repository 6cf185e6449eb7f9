package worker

import (
	"context"
	"time"

	"ticketshop/internal/models"
	"ticketshop/internal/store"
	"ticketshop/internal/util"

	"go.uber.org/zap"
)

// Reconciler sweeps orders stuck in PENDING. An order can be stranded when
// the payment side persists a decision but crashes before publishing, or when
// an outcome message is lost after its offset was committed. The sweep rejects
// such orders through the same guarded finalize the outcome handler uses, so
// an outcome that arrives late simply drops.
type Reconciler struct {
	store    *store.Store
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewReconciler creates a new pending-order reconciler
func NewReconciler(store *store.Store, maxAge, interval time.Duration) *Reconciler {
	return &Reconciler{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start runs the sweep until the context is cancelled
func (r *Reconciler) Start(ctx context.Context) error {
	r.logger.Info("Starting pending-order reconciler",
		zap.Duration("max_age", r.maxAge),
		zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.logger.Error("Reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep rejects every PENDING order older than the configured age
func (r *Reconciler) Sweep(ctx context.Context) error {
	stale, err := r.store.GetStalePendingOrders(ctx, r.maxAge)
	if err != nil {
		return err
	}

	for _, order := range stale {
		changed, err := r.store.FinalizeOrder(ctx, order.ID, models.OrderStatusRejected)
		if err != nil {
			r.logger.Error("Failed to reject stale order",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
			continue
		}
		if changed {
			util.OrdersReconciledTotal.Inc()
			r.logger.Warn("Stale pending order rejected",
				zap.Int64("order_id", order.ID),
				zap.Time("created_at", order.CreatedAt))
		}
	}

	return nil
}
