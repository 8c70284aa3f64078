package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the poller's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	ticksTotal      *prometheus.CounterVec
	feedFetches     *prometheus.CounterVec
	gamesProcessed  prometheus.Counter
	gamesFinal      prometheus.Counter
	artifactsTotal  *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	sleepSeconds    prometheus.Histogram
	controllerState prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poller_ticks_total",
			Help: "Poll ticks by outcome",
		}, []string{"outcome"}),
		feedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poller_feed_fetch_total",
			Help: "Feed fetches by feed and result (ok, not_modified, error)",
		}, []string{"feed", "result"}),
		gamesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poller_games_processed_total",
			Help: "Games processed by poll ticks",
		}),
		gamesFinal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poller_games_final_total",
			Help: "Games that reached a final status",
		}),
		artifactsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poller_artifacts_written_total",
			Help: "Artifacts written by kind",
		}, []string{"kind"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poller_store_errors_total",
			Help: "Record and artifact store failures by operation",
		}, []string{"op"}),
		sleepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poller_sleep_seconds",
			Help:    "Pauses between games within a tick",
			Buckets: []float64{0, 0.25, 0.5, 1, 1.5, 2, 2.5, 3},
		}),
		controllerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poller_controller_state",
			Help: "Controller state: 0 disabled, 1 kickoff scheduled, 2 polling",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poller_http_requests_total",
			Help: "HTTP requests served by status class",
		}, []string{"code"}),
	}

	registry.MustRegister(
		m.ticksTotal,
		m.feedFetches,
		m.gamesProcessed,
		m.gamesFinal,
		m.artifactsTotal,
		m.storeErrors,
		m.sleepSeconds,
		m.controllerState,
		m.requestsTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncTick(outcome string) {
	if m == nil {
		return
	}
	m.ticksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFeedFetch(feed, result string) {
	if m == nil {
		return
	}
	m.feedFetches.WithLabelValues(feed, result).Inc()
}

func (m *Metrics) IncGamesProcessed() {
	if m == nil {
		return
	}
	m.gamesProcessed.Inc()
}

func (m *Metrics) IncGamesFinal() {
	if m == nil {
		return
	}
	m.gamesFinal.Inc()
}

func (m *Metrics) IncArtifact(kind string) {
	if m == nil {
		return
	}
	m.artifactsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncStoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveSleep(seconds float64) {
	if m == nil {
		return
	}
	m.sleepSeconds.Observe(seconds)
}

// SetControllerState records the controller state as its ordinal.
func (m *Metrics) SetControllerState(ordinal int) {
	if m == nil {
		return
	}
	m.controllerState.Set(float64(ordinal))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
