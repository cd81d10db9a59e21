package perf

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process metrics. Every method is safe on a nil
// *Collector so instrumentation can be left unwired in tests.
type Collector struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	queryDuration   *prometheus.HistogramVec
	sessionsAdded   prometheus.Counter
	sessionsRemoved prometheus.Counter
	overlaps        prometheus.Counter
	persistFailures prometheus.Counter
	notifications   *prometheus.CounterVec
}

// NewCollector creates a collector backed by its own registry.
// PRE: none
// POST: Returns a collector with Go runtime and process metrics registered
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collector{
		registry: reg,
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "academy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "academy_db_query_duration_seconds",
			Help:    "Database call duration in seconds.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),
		sessionsAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_sessions_added_total",
			Help: "Sessions accepted into a promotion schedule.",
		}),
		sessionsRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_sessions_removed_total",
			Help: "Sessions removed from a promotion schedule.",
		}),
		overlaps: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_session_overlaps_total",
			Help: "Candidate sessions refused because their dates overlap.",
		}),
		persistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_session_persist_failures_total",
			Help: "Candidate sessions lost because the backend failed.",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_notifications_total",
			Help: "Outbox deliveries by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, path string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveQuery records one database call.
func (c *Collector) ObserveQuery(op string, d time.Duration) {
	if c == nil {
		return
	}
	c.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// SessionAdded counts an accepted session.
func (c *Collector) SessionAdded() {
	if c == nil {
		return
	}
	c.sessionsAdded.Inc()
}

// SessionRemoved counts a removed session.
func (c *Collector) SessionRemoved() {
	if c == nil {
		return
	}
	c.sessionsRemoved.Inc()
}

// OverlapRejected counts a refused candidate.
func (c *Collector) OverlapRejected() {
	if c == nil {
		return
	}
	c.overlaps.Inc()
}

// PersistFailed counts a backend failure while creating a session.
func (c *Collector) PersistFailed() {
	if c == nil {
		return
	}
	c.persistFailures.Inc()
}

// NotificationDelivered counts an outbox delivery outcome (delivered, retrying or failed).
func (c *Collector) NotificationDelivered(outcome string) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
// A nil collector serves 404.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
