package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostel"

// Delivery outcomes for realtime events
const (
	OutcomeDelivered     = "delivered"
	OutcomeDropped       = "dropped"
	OutcomeNoSubscriber  = "no_subscriber"
	OutcomePublishFailed = "publish_failed"
)

// Metrics owns a private registry so tests and multiple app instances never
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	issuesCreated       prometheus.Counter
	issueTransitions    *prometheus.CounterVec
	realtimeDeliveries  *prometheus.CounterVec
	realtimeConnections prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		issuesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_created_total",
			Help:      "Issues reported by students.",
		}),
		issueTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issue_transitions_total",
			Help:      "Issue status transitions by source and target status.",
		}, []string{"from", "to"}),
		realtimeDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_deliveries_total",
			Help:      "Realtime events by event name and outcome.",
		}, []string{"event", "outcome"}),
		realtimeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_connections",
			Help:      "Currently authenticated websocket connections.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.issuesCreated,
		m.issueTransitions,
		m.realtimeDeliveries,
		m.realtimeConnections,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency. Routes are labelled with the
// gin route template so path parameters do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IssueCreated() {
	m.issuesCreated.Inc()
}

func (m *Metrics) IssueTransition(from, to models.IssueStatus) {
	m.issueTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) ObserveDelivery(event, outcome string) {
	m.realtimeDeliveries.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) SetConnections(n int) {
	m.realtimeConnections.Set(float64(n))
}
