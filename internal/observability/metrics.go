package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/triage-service/internal/domain"
)

const namespace = "triage"

// Metrics exposes Prometheus collectors for the HTTP layer and triage pipeline.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	triageTotal       *prometheus.CounterVec
	confidence        prometheus.Histogram
	priorityTotal     *prometheus.CounterVec
	teamTotal         *prometheus.CounterVec
	notificationTotal *prometheus.CounterVec
	corpusTickets     prometheus.Gauge
	corpusReloads     *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"route", "method"}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP errors by route, method and error code",
		}, []string{"route", "method", "code"}),
		triageTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Triage runs by outcome",
		}, []string{"outcome"}),
		confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "confidence_score",
			Help:      "Confidence scores of successful triage runs",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95},
		}),
		priorityTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "priority_total",
			Help:      "Assigned priorities",
		}, []string{"priority"}),
		teamTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "team_total",
			Help:      "Assigned teams",
		}, []string{"team"}),
		notificationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Ticket notifications by trigger and result",
		}, []string{"trigger", "result"}),
		corpusTickets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "tickets",
			Help:      "Historical tickets in the active corpus",
		}),
		corpusReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "reloads_total",
			Help:      "Corpus reload attempts by result",
		}, []string{"result"}),
	}
}

// RecordRequest observes a finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(route, method, code).Inc()
}

// RecordTriage records a successful triage run.
func (m *Metrics) RecordTriage(result domain.AnalysisResult) {
	if m == nil {
		return
	}
	m.triageTotal.WithLabelValues("ok").Inc()
	m.confidence.Observe(result.Confidence)
	m.priorityTotal.WithLabelValues(string(result.Priority)).Inc()
	m.teamTotal.WithLabelValues(string(result.Team)).Inc()
}

// RecordTriageFailure records a run that fell back to the placeholder result.
func (m *Metrics) RecordTriageFailure(kind string) {
	if m == nil {
		return
	}
	m.triageTotal.WithLabelValues(kind).Inc()
}

// RecordNotification records an alert attempt.
func (m *Metrics) RecordNotification(trigger string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notificationTotal.WithLabelValues(trigger, result).Inc()
}

// SetCorpusSize updates the active corpus gauge.
func (m *Metrics) SetCorpusSize(n int) {
	if m == nil {
		return
	}
	m.corpusTickets.Set(float64(n))
}

// RecordCorpusReload counts a reload attempt.
func (m *Metrics) RecordCorpusReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.corpusReloads.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
