package bigscreenmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bigscreen"

// Metrics is the Prometheus implementation of the scheduler and hub metrics.
type Metrics struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	staleResponses *prometheus.CounterVec
	pageRotations  *prometheus.CounterVec
	liveGames      prometheus.Gauge
	displayClients prometheus.Gauge
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_total",
			Help:      "Upstream fetches by endpoint and result.",
		}, []string{"endpoint", "result"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Upstream fetch latency.",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		staleResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer one was already applied.",
		}, []string{"endpoint"}),
		pageRotations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_rotations_total",
			Help:      "Page advances by surface.",
		}, []string{"surface"}),
		liveGames: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_games",
			Help:      "Live games in the latest poll.",
		}),
		displayClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "display_clients",
			Help:      "Connected WebSocket display clients.",
		}),
	}
}

func (m *Metrics) RecordFetch(endpoint string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	m.fetchTotal.WithLabelValues(endpoint, result).Inc()
	m.fetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordStaleResponse(endpoint string) {
	m.staleResponses.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) RecordPageRotation(surface string) {
	m.pageRotations.WithLabelValues(surface).Inc()
}

func (m *Metrics) SetLiveGames(count int) {
	m.liveGames.Set(float64(count))
}

func (m *Metrics) ClientConnected() {
	m.displayClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	m.displayClients.Dec()
}
