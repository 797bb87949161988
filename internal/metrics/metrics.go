package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RFQOperationsTotal tracks lifecycle operations by outcome.
	RFQOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_operations_total",
			Help: "Total number of RFQ lifecycle operations (by op and result).",
		},
		[]string{"op", "result"},
	)

	// StoreCallDuration measures entity store round-trip latency.
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfq_store_call_duration_seconds",
			Help:    "Duration of entity store calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"op"},
	)

	// FeedEventsTotal counts change feed events by classification.
	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_feed_events_total",
			Help: "Number of change feed events dispatched (by kind).",
		},
		[]string{"kind"},
	)

	// BusPublishErrors tracks event bus publish failures by subject.
	BusPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_bus_publish_errors_total",
			Help: "Number of event bus publish failures by subject.",
		},
		[]string{"subject"},
	)
)

// IncOperation increments the lifecycle operation counter.
func IncOperation(op, result string) {
	RFQOperationsTotal.WithLabelValues(op, result).Inc()
}

// ObserveStoreCall records elapsed time since start for a store op.
func ObserveStoreCall(op string, start time.Time) {
	StoreCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// IncFeedEvent increments the feed event counter for the given kind.
func IncFeedEvent(kind string) {
	FeedEventsTotal.WithLabelValues(kind).Inc()
}

// IncBusPublishError increments the publish error counter for the given subject.
func IncBusPublishError(subject string) {
	BusPublishErrors.WithLabelValues(subject).Inc()
}
