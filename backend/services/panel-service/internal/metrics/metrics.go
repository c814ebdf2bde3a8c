package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "panel"

// Metrics holds the poller collectors. A nil *Metrics is a no-op.
type Metrics struct {
	polls        *prometheus.CounterVec
	pollErrors   *prometheus.CounterVec
	pollDuration prometheus.Histogram
	slotWrites   *prometheus.CounterVec
	wsClients    prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Measurement polls by outcome (updated, empty, failed).",
		}, []string{"outcome"}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Failed measurement polls by error kind.",
		}, []string{"kind"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of a full refresh cycle in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		slotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_writes_total",
			Help:      "Text writes per display slot.",
		}, []string{"slot"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected panel websocket clients.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.polls, m.pollErrors, m.pollDuration, m.slotWrites, m.wsClients)
	}
	return m
}

// ObservePoll records one refresh cycle. kind is empty unless outcome is a failure.
func (m *Metrics) ObservePoll(outcome, kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(outcome).Inc()
	if kind != "" {
		m.pollErrors.WithLabelValues(kind).Inc()
	}
	m.pollDuration.Observe(took.Seconds())
}

// SlotWritten counts a write to slot.
func (m *Metrics) SlotWritten(slot string) {
	if m == nil {
		return
	}
	m.slotWrites.WithLabelValues(slot).Inc()
}

// ClientConnected adjusts the websocket client gauge by delta.
func (m *Metrics) ClientConnected(delta int) {
	if m == nil {
		return
	}
	m.wsClients.Add(float64(delta))
}

// Handler exposes the collectors of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
