package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes.
const (
	CacheHit       = "hit"
	CacheRemoteHit = "remote_hit"
	CacheMiss      = "miss"
)

// QueryMetrics records result-cache lookups and store fetches.
type QueryMetrics struct {
	cacheRequests *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
}

// NewQueryMetrics registers the query metrics on the provided registerer.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	if reg == nil {
		return &QueryMetrics{}
	}
	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_cache_requests_total",
		Help: "Result cache lookups by table and outcome.",
	}, []string{"table", "result"})
	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_store_fetch_duration_seconds",
		Help:    "Duration of aggregate table fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})
	fetchFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_store_fetch_failures_total",
		Help: "Failed aggregate table fetches by error code.",
	}, []string{"table", "code"})
	reg.MustRegister(cacheRequests, fetchDuration, fetchFailures)
	return &QueryMetrics{
		cacheRequests: cacheRequests,
		fetchDuration: fetchDuration,
		fetchFailures: fetchFailures,
	}
}

// IncCache counts one cache lookup with the given outcome.
func (m *QueryMetrics) IncCache(table, result string) {
	if m == nil || m.cacheRequests == nil {
		return
	}
	m.cacheRequests.WithLabelValues(normalizeLabel(table), normalizeLabel(result)).Inc()
}

// ObserveFetch records the duration of a store fetch.
func (m *QueryMetrics) ObserveFetch(table string, duration time.Duration) {
	if m == nil || m.fetchDuration == nil {
		return
	}
	m.fetchDuration.WithLabelValues(normalizeLabel(table)).Observe(duration.Seconds())
}

// IncFetchFailure counts a failed store fetch.
func (m *QueryMetrics) IncFetchFailure(table, code string) {
	if m == nil || m.fetchFailures == nil {
		return
	}
	m.fetchFailures.WithLabelValues(normalizeLabel(table), normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
