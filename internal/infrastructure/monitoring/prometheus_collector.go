package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements the relay's Metrics seam.
type PrometheusCollector struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter

	callsInitiatedTotal prometheus.Counter
	callsAcceptedTotal  prometheus.Counter
	callsEndedTotal     *prometheus.CounterVec

	messagesRelayedTotal   prometheus.Counter
	signalsForwardedTotal  *prometheus.CounterVec
	callRingDurationSecond prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "teleconsult_connections_active",
			Help: "Number of currently connected clients",
		}),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "teleconsult_connections_total",
			Help: "Total number of accepted WebSocket connections",
		}),

		callsInitiatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "teleconsult_calls_initiated_total",
			Help: "Total number of call invites that passed the presence and busy checks",
		}),

		callsAcceptedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "teleconsult_calls_accepted_total",
			Help: "Total number of calls the callee accepted",
		}),

		callsEndedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teleconsult_calls_ended_total",
			Help: "Total number of call teardowns by reason",
		}, []string{"reason"}),

		messagesRelayedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "teleconsult_messages_relayed_total",
			Help: "Total number of chat messages persisted and fanned out",
		}),

		signalsForwardedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teleconsult_signals_forwarded_total",
			Help: "Total number of negotiation payloads forwarded by event type",
		}, []string{"type"}),

		callRingDurationSecond: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "teleconsult_call_ring_duration_seconds",
			Help:    "Time between call invite and accept",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

func (p *PrometheusCollector) ConnectionOpened() {
	p.connectionsActive.Inc()
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) ConnectionClosed() {
	p.connectionsActive.Dec()
}

func (p *PrometheusCollector) CallInitiated() {
	p.callsInitiatedTotal.Inc()
}

func (p *PrometheusCollector) CallAccepted(ringDuration time.Duration) {
	p.callsAcceptedTotal.Inc()
	p.callRingDurationSecond.Observe(ringDuration.Seconds())
}

func (p *PrometheusCollector) CallEnded(reason string) {
	p.callsEndedTotal.WithLabelValues(reason).Inc()
}

func (p *PrometheusCollector) MessageRelayed() {
	p.messagesRelayedTotal.Inc()
}

func (p *PrometheusCollector) SignalForwarded(eventType string) {
	p.signalsForwardedTotal.WithLabelValues(eventType).Inc()
}
