// Package metrics exposes Prometheus collectors for the HTTP layer and the
// review ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	reviewsAppended prometheus.Counter
	reviewRejects   *prometheus.CounterVec
}

// NewCollector registers every metric on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viniloteca_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "viniloteca_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reviewsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viniloteca_reviews_appended_total",
			Help: "Reviews persisted by the ledger.",
		}),
		reviewRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viniloteca_review_rejections_total",
			Help: "Review writes rejected, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(c.requests, c.duration, c.reviewsAppended, c.reviewRejects)

	return c
}

func (c *Collector) RecordReviewAppended() {
	c.reviewsAppended.Inc()
}

// RecordReviewRejected counts a failed append. reason is a short label such
// as "invalid_content" or "storage_failure".
func (c *Collector) RecordReviewRejected(reason string) {
	c.reviewRejects.WithLabelValues(reason).Inc()
}

// Middleware records count and latency per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		c.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		c.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
