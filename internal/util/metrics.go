package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Total number of requests issued to the remote admin API",
	}, []string{"operation", "outcome"})

	BackendRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_latency_seconds",
		Help:    "Latency of remote admin API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	ProductRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_refreshes_total",
		Help: "Total number of product list refreshes",
	}, []string{"outcome"})

	ProductEditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_edits_total",
		Help: "Total number of product edit submissions",
	}, []string{"outcome"})

	ProductDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_deletes_total",
		Help: "Total number of product deletions",
	}, []string{"outcome"})

	IntakeBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_batches_total",
		Help: "Total number of inventory intake batch submissions",
	}, []string{"outcome"})

	IntakeBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intake_batch_size",
		Help:    "Number of items per submitted intake batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	ScannerDetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_detections_total",
		Help: "Total number of barcode detections routed to the intake form",
	}, []string{"result"})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status update attempts",
	}, []string{"outcome"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of admin login attempts",
	}, []string{"outcome"})

	ToastsShownTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toasts_shown_total",
		Help: "Total number of toast notifications shown",
	}, []string{"kind"})

	AuditEventsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_events_persisted_total",
		Help: "Total number of audit events written to the audit log",
	})

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
