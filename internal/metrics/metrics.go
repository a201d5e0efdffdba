// Package metrics exposes the Prometheus collectors of the fare path service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector.
const Namespace = "farepath"

// UnmatchedPath labels requests that hit no route, keeping path cardinality bounded.
const UnmatchedPath = "unmatched"

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_panics_total",
			Help:      "Recovered handler panics",
		},
		[]string{"path"},
	)

	// PricingSearchesTotal counts pricing transactions by outcome: priced, cached,
	// no_solution, cancelled, limit_exceeded or error.
	PricingSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pricing_searches_total",
			Help:      "Pricing transactions by outcome",
		},
		[]string{"status"},
	)

	PricingSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pricing_search_duration_seconds",
			Help:      "Pricing transaction duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// FarePathCombinationsTried is observed once per passenger type search.
	FarePathCombinationsTried = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fare_path_combinations_tried",
			Help:      "Fare path combinations evaluated by one passenger type search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"pax_type"},
	)

	SearchShortCircuitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pricing_search_short_circuits_total",
			Help:      "Searches stopped before exhausting their combinations, by reason",
		},
		[]string{"reason"},
	)

	// PricingRecordsTotal counts asynchronous record writes: written, dropped or failed.
	PricingRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pricing_records_total",
			Help:      "Pricing record writes by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState reports 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_operations_total",
			Help:      "Result cache operations",
		},
		[]string{"operation", "result"},
	)

	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_size",
		Help:      "Cached pricing results",
	})

	CacheCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_capacity",
		Help:      "Result cache capacity",
	})
)

// PrometheusMiddleware observes every request under its route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = UnmatchedPath
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		HTTPRequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// RecordPricingSearch records one pricing transaction.
func RecordPricingSearch(duration time.Duration, status string) {
	PricingSearchDuration.Observe(duration.Seconds())
	PricingSearchesTotal.WithLabelValues(status).Inc()
}

func RecordCombinationsTried(paxType string, n int) {
	FarePathCombinationsTried.WithLabelValues(paxType).Observe(float64(n))
}

func RecordShortCircuit(reason string) {
	SearchShortCircuitsTotal.WithLabelValues(reason).Inc()
}

func RecordPricingRecord(result string) {
	PricingRecordsTotal.WithLabelValues(result).Inc()
}

// RecordPanic counts a recovered panic on a route template.
func RecordPanic(path string) {
	HTTPPanicsTotal.WithLabelValues(path).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics publishes the cache occupancy.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}
