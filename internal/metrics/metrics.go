// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "hookscope"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion
	WebhooksReceived *prometheus.CounterVec
	WebhookDuration  *prometheus.HistogramVec
	EventsProcessed  *prometheus.CounterVec
	ParseErrors      *prometheus.CounterVec
	ObserverFailures *prometheus.CounterVec

	// Analytics
	EventsSwept prometheus.Counter

	// Broadcast
	ConnectedClients  prometheus.Gauge
	MessagesPublished *prometheus.CounterVec
	ClientsDropped    prometheus.Counter

	// Alerts
	AlertsRaised     *prometheus.CounterVec
	AlertDeliveries  *prometheus.CounterVec
	AlertQueueLength prometheus.Gauge

	// API keys
	KeyValidations *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		WebhooksReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "webhooks_received_total",
			Help:      "Webhook requests received by kind and outcome",
		}, []string{"kind", "status"}),
		WebhookDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "webhook_duration_seconds",
			Help:      "Webhook handling latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		EventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_processed_total",
			Help:      "Normalized domain events by kind",
		}, []string{"kind"}),
		ParseErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "parse_errors_total",
			Help:      "Transactions skipped as malformed by webhook kind",
		}, []string{"kind"}),
		ObserverFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "observer_failures_total",
			Help:      "Observer errors and recovered panics",
		}, []string{"observer"}),

		EventsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "events_swept_total",
			Help:      "Events removed by the retention sweep",
		}),

		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "connected_clients",
			Help:      "Currently registered WebSocket clients",
		}),
		MessagesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "messages_published_total",
			Help:      "Messages delivered to clients by channel",
		}, []string{"channel"}),
		ClientsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "clients_dropped_total",
			Help:      "Clients unregistered after a failed send",
		}),

		AlertsRaised: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "raised_total",
			Help:      "Whale alerts raised by type",
		}, []string{"type"}),
		AlertDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "deliveries_total",
			Help:      "Alert delivery attempts by channel and status",
		}, []string{"channel", "status"}),
		AlertQueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "queue_length",
			Help:      "Alerts waiting for the next batch flush",
		}),

		KeyValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "validations_total",
			Help:      "API key validations by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) WebhookHandled(kind, status string, started time.Time) {
	if m == nil {
		return
	}
	m.WebhooksReceived.WithLabelValues(kind, status).Inc()
	m.WebhookDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

func (m *Metrics) EventProcessed(kind string) {
	if m == nil {
		return
	}
	m.EventsProcessed.WithLabelValues(kind).Inc()
}

func (m *Metrics) ParseError(kind string) {
	if m == nil {
		return
	}
	m.ParseErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserverFailed(observer string) {
	if m == nil {
		return
	}
	m.ObserverFailures.WithLabelValues(observer).Inc()
}

func (m *Metrics) Swept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EventsSwept.Add(float64(n))
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.ConnectedClients.Inc()
}

func (m *Metrics) ClientDisconnected(dropped bool) {
	if m == nil {
		return
	}
	m.ConnectedClients.Dec()
	if dropped {
		m.ClientsDropped.Inc()
	}
}

func (m *Metrics) Published(channel string, delivered int) {
	if m == nil || delivered == 0 {
		return
	}
	m.MessagesPublished.WithLabelValues(channel).Add(float64(delivered))
}

func (m *Metrics) AlertRaised(alertType string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(alertType).Inc()
}

func (m *Metrics) AlertDelivered(channel string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.AlertDeliveries.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) QueueLength(n int) {
	if m == nil {
		return
	}
	m.AlertQueueLength.Set(float64(n))
}

func (m *Metrics) KeyValidated(result string) {
	if m == nil {
		return
	}
	m.KeyValidations.WithLabelValues(result).Inc()
}
