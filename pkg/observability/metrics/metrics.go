// Package metrics provides Prometheus metrics for the catalog service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// httpRequestDuration tracks HTTP request duration in seconds.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// searchDuration tracks search pipeline execution, split by whether
	// the score-annotation stage ran.
	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Product search execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scored"},
	)

	// ratingMutationsTotal counts rating/like mutations by operation and
	// enumerated outcome.
	ratingMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rating_mutations_total",
			Help: "Rating aggregate mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	httpRequestDuration.WithLabelValues(method, path, s).Observe(duration.Seconds())
	httpRequestsTotal.WithLabelValues(method, path, s).Inc()
}

// RecordSearch records one search pipeline execution.
func RecordSearch(duration time.Duration, scored bool) {
	searchDuration.WithLabelValues(strconv.FormatBool(scored)).Observe(duration.Seconds())
}

// RecordRatingMutation records one rating/like mutation outcome.
func RecordRatingMutation(operation, outcome string) {
	ratingMutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// Handler returns the exposition handler for the default registry, which
// holds the service metrics above plus the Go runtime and process
// collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
