package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShoppingMetrics records cart/wishlist engine and catalog query activity.
type ShoppingMetrics struct {
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	loadFallbacks   *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	queryResults    prometheus.Histogram
}

// NewShoppingMetrics registers the shopping metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewShoppingMetrics(reg prometheus.Registerer) *ShoppingMetrics {
	if reg == nil {
		return &ShoppingMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshcart",
		Name:      "engine_mutations_total",
		Help:      "Cart and wishlist mutations applied, by operation.",
	}, []string{"op"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshcart",
		Name:      "engine_persist_failures_total",
		Help:      "Write-through commits that the store rejected.",
	}, []string{"collection"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshcart",
		Name:      "engine_persist_conflicts_total",
		Help:      "Commits that overwrote a revision written by another engine.",
	}, []string{"collection"})
	loadFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshcart",
		Name:      "engine_load_fallbacks_total",
		Help:      "Persisted collections replaced with an empty one on load.",
	}, []string{"collection", "reason"})
	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "freshcart",
		Name:      "catalog_query_duration_seconds",
		Help:      "Duration of catalog filter/sort passes.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}, []string{"sort"})
	queryResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "freshcart",
		Name:      "catalog_query_results",
		Help:      "Products matched by a catalog query.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
	})
	reg.MustRegister(mutations, persistFailures, conflicts, loadFallbacks, queryDuration, queryResults)
	return &ShoppingMetrics{
		mutations:       mutations,
		persistFailures: persistFailures,
		conflicts:       conflicts,
		loadFallbacks:   loadFallbacks,
		queryDuration:   queryDuration,
		queryResults:    queryResults,
	}
}

// IncMutation counts one applied mutation.
func (m *ShoppingMetrics) IncMutation(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistFailure counts a rejected commit for the collection.
func (m *ShoppingMetrics) IncPersistFailure(collection string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncConflict counts a last-writer-wins overwrite for the collection.
func (m *ShoppingMetrics) IncConflict(collection string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(collection)).Inc()
}

// IncLoadFallback counts a collection that loaded empty for reason.
func (m *ShoppingMetrics) IncLoadFallback(collection, reason string) {
	if m == nil || m.loadFallbacks == nil {
		return
	}
	m.loadFallbacks.WithLabelValues(normalizeLabel(collection), normalizeLabel(reason)).Inc()
}

// ObserveQuery records how long a query took and how many products it matched.
func (m *ShoppingMetrics) ObserveQuery(sort string, duration time.Duration, matched int) {
	if m == nil || m.queryDuration == nil {
		return
	}
	m.queryDuration.WithLabelValues(normalizeLabel(sort)).Observe(duration.Seconds())
	m.queryResults.Observe(float64(matched))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
