package prometheus

import (
	"time"

	"github.com/convertly-dev/convertlykit/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Domain operation metrics
	StoreOperationsCounter      prometheus.CounterVec
	ProductOperationsCounter    prometheus.CounterVec
	CollectionOperationsCounter prometheus.CounterVec

	// Checkout / payment pipeline metrics
	CheckoutCounter      prometheus.CounterVec
	WebhookEventsCounter prometheus.CounterVec
	EmailsCounter        prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	// Use metric prefix from configuration
	prefix := cfg.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Store metrics
	StoreOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation"},
	)

	// Product metrics
	ProductOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation"},
	)

	// Collection metrics
	CollectionOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_collection_operations_total",
			Help: "Total number of collection operations",
		},
		[]string{"operation"},
	)

	// Checkout metrics
	CheckoutCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_checkouts_total",
			Help: "Total number of checkout attempts",
		},
		[]string{"outcome"},
	)

	// Webhook metrics
	WebhookEventsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_webhook_events_total",
			Help: "Total number of inbound webhook events",
		},
		[]string{"provider", "outcome"},
	)

	// Email metrics
	EmailsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notification_emails_total",
			Help: "Total number of notification emails dispatched",
		},
		[]string{"kind", "status"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordStoreOperation increments the counter for store operations
func RecordStoreOperation(operation string) {
	StoreOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordProductOperation increments the counter for product operations
func RecordProductOperation(operation string) {
	ProductOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCollectionOperation increments the counter for collection operations
func RecordCollectionOperation(operation string) {
	CollectionOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCheckout increments the checkout counter with an outcome label
func RecordCheckout(outcome string) {
	CheckoutCounter.WithLabelValues(outcome).Inc()
}

// RecordWebhookEvent increments the webhook event counter
func RecordWebhookEvent(provider, outcome string) {
	WebhookEventsCounter.WithLabelValues(provider, outcome).Inc()
}

// RecordEmail increments the notification email counter
func RecordEmail(kind, status string) {
	EmailsCounter.WithLabelValues(kind, status).Inc()
}
