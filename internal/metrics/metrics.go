package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// HTTP records request metrics for the storefront API.
type HTTP struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	responseBytes  *prometheus.HistogramVec
	inFlight       prometheus.Gauge
	sessionsMinted prometheus.Counter
}

func NewHTTP(reg prometheus.Registerer) *HTTP {

	factory := promauto.With(reg)

	return &HTTP{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"code", "method", "path"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		responseBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP response bodies.",
			Buckets: prometheus.ExponentialBuckets(128, 4, 6),
		}, []string{"path"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		}),
		sessionsMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_sessions_started_total",
			Help: "Anonymous sessions started because the request carried no usable token.",
		}),
	}
}

// captures status and body size for the deferred observations
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware labels requests by their matched route pattern so product and wishlist ids don't explode cardinality.
// It must wrap the ServeMux directly; r.Pattern is only set on the request the mux receives.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		m.inFlight.Inc()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {

			path := r.Pattern
			if path == "" {
				path = unmatchedRoute
			}

			m.requests.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
			m.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			m.responseBytes.WithLabelValues(path).Observe(float64(rw.written))
			m.inFlight.Dec()

			if rw.Header().Get(middleware.SessionTokenHeader) != "" {
				m.sessionsMinted.Inc()
			}
		}()

		next.ServeHTTP(rw, r)
	})
}

// Handler serves the /metrics endpoint for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
