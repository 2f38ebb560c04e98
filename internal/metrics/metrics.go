package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlinks_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vlinks_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Redirect metrics
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlinks_redirects_total",
			Help: "Total number of redirect requests by outcome",
		},
		[]string{"outcome"}, // "redirected", "not_found", "expired", "error"
	)

	// Click logger metrics
	ClicksLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlinks_clicks_logged_total",
			Help: "Total number of click writes by result",
		},
		[]string{"result"}, // "ok", "error"
	)

	ClicksDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vlinks_clicks_dropped_total",
			Help: "Clicks dropped because the queue was full or stopped",
		},
	)

	ClickQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vlinks_click_queue_length",
			Help: "Current number of clicks waiting to be written",
		},
	)

	// Webhook metrics
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlinks_webhook_events_total",
			Help: "Total number of CRM webhook events by outcome",
		},
		[]string{"outcome"},
	)

	AttributionTier = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlinks_attribution_total",
			Help: "Created bookings by attribution tier",
		},
		[]string{"tier"}, // "exact", "fallback", "none"
	)

	// Cache metrics
	LinkCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vlinks_link_cache_hits_total",
			Help: "Total number of link cache hits",
		},
	)

	LinkCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vlinks_link_cache_misses_total",
			Help: "Total number of link cache misses",
		},
	)

	// Retention metrics
	WebhookLogsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vlinks_webhook_logs_purged_total",
			Help: "Total number of webhook audit rows removed by retention",
		},
	)
)

// Middleware records request counts and latency. The route label is the chi
// route pattern, so path parameters do not blow up cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
