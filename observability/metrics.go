package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricPrefix namespaces every metric the service exports
const MetricPrefix = "pledgebook"

// Label keys
const (
	LabelStore    = "store"
	LabelOutcome  = "outcome"
	LabelMethod   = "method"
	LabelEndpoint = "endpoint"
	LabelStatus   = "status"
	LabelKind     = "kind"
	LabelEvent    = "event_type"
)

var (
	// SkippedRecords counts ledger lines dropped because they failed to parse
	SkippedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "store_skipped_records_total",
		Help:      "Stored records skipped on read because they could not be parsed",
	}, []string{LabelStore})

	// DroppedRecords counts unparseable lines lost when a store is rewritten
	DroppedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "store_dropped_records_total",
		Help:      "Unparseable records removed from a store by a rewrite",
	}, []string{LabelStore})

	StoreWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "store_writes_total",
		Help:      "Store write operations by outcome",
	}, []string{LabelStore, LabelOutcome})

	// PriceFetches counts remote quote lookups. outcome is "ok" or "error".
	PriceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "price_fetches_total",
		Help:      "Remote price feed requests by outcome",
	}, []string{LabelOutcome})

	PriceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "price_cache_hits_total",
		Help:      "Price lookups served from the cache",
	})

	PledgesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "pledges_submitted_total",
		Help:      "Pledges created",
	}, []string{LabelKind})

	PledgesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "pledges_accepted_total",
		Help:      "Pledges moved from pending to accepted",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "events_published_total",
		Help:      "Domain events forwarded to external sinks",
	}, []string{LabelEvent, LabelOutcome})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricPrefix,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{LabelMethod, LabelEndpoint, LabelStatus})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricPrefix,
		Name:      "http_request_duration_seconds",
		Help:      "Request latency",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 6},
	}, []string{LabelMethod, LabelEndpoint})
)
