package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal is labelled by terminal outcome: "allowed" plus one
	// label per denial reason. Business denials are expected traffic and
	// must never show up in error-rate alerts, so they get their own
	// counter rather than an HTTP 5xx.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fleet_availability", Name: "decisions_total", Help: "Eligibility decisions by outcome"},
		[]string{"outcome"},
	)
	StoreFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fleet_availability", Name: "store_faults_total", Help: "Spatial store call failures by stage"},
		[]string{"stage"},
	)
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleet_availability",
			Name:      "store_call_duration_seconds",
			Help:      "Spatial store call latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	AuditWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "fleet_availability", Name: "audit_writes_total", Help: "Availability history entries attempted"},
	)
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "fleet_availability", Name: "audit_write_failures_total", Help: "Availability history writes that failed and were absorbed"},
	)

	ResolverCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fleet_availability", Name: "resolver_cache_total", Help: "Service-area resolver cache lookups"},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fleet_availability", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleet_availability",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
