package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchaseAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_attempts_total",
		Help: "Total number of purchase attempts received",
	})

	PurchaseRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_rejected_total",
		Help: "Total number of purchases rejected on the synchronous path",
	}, []string{"reason"})

	OrdersPendingTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_pending_total",
		Help: "Total number of orders written as PENDING",
	})

	OrdersFinalizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_finalized_total",
		Help: "Total number of orders moved to a terminal status",
	}, []string{"status"})

	OrdersCompensatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_compensated_total",
		Help: "Total number of orders rejected by publish-failure compensation",
	})

	OrdersReconciledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_reconciled_total",
		Help: "Total number of stuck pending orders rejected by the sweep",
	})

	OutcomesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_outcomes_dropped_total",
		Help: "Total number of outcome messages dropped without effect",
	}, []string{"reason"})

	PaymentDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_decisions_total",
		Help: "Total number of payment decisions made",
	}, []string{"status"})

	PaymentDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_duplicate_requests_total",
		Help: "Total number of redelivered purchase requests answered from an existing transaction",
	})

	TicketIssuanceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ticket_issuance_latency_seconds",
		Help:    "Latency of synchronous ticket issuance calls",
		Buckets: prometheus.DefBuckets,
	})

	TicketIssuanceFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_issuance_failed_total",
		Help: "Total number of failed ticket issuance calls",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
