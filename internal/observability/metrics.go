package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry. Every method is safe on a nil receiver so
// callers can run with metrics disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	rankStage      *prometheus.HistogramVec
	rankCandidates *prometheus.HistogramVec
	rankEmpty      *prometheus.CounterVec
	prefsDropped   prometheus.Histogram
	encoderCache   *prometheus.CounterVec
	indexBootstrap *prometheus.CounterVec
	catalogGames   prometheus.Gauge
	indexRows      prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gamerec_api_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamerec_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "gamerec_api_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		rankStage: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamerec_rank_stage_duration_seconds",
			Help:    "Ranking latency per stage (encode, search, score).",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"stage"}),
		rankCandidates: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamerec_rank_candidates",
			Help:    "Candidate counts per ranking stage (retrieved, eligible, returned).",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"stage"}),
		rankEmpty: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gamerec_rank_empty_total",
			Help: "Rank calls that produced no results, by the step that emptied the pool.",
		}, []string{"step"}),
		prefsDropped: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gamerec_preferences_dropped_candidates",
			Help:    "Candidates removed by hard preference exclusions per request.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		encoderCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gamerec_encoder_cache_total",
			Help: "Query vector cache lookups by result.",
		}, []string{"result"}),
		indexBootstrap: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gamerec_index_bootstrap_total",
			Help: "Index backend bootstrap attempts.",
		}, []string{"backend", "result", "code"}),
		catalogGames: f.NewGauge(prometheus.GaugeOpts{
			Name: "gamerec_catalog_games",
			Help: "Records in the loaded catalog.",
		}),
		indexRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "gamerec_index_rows",
			Help: "Rows in the loaded embedding index.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveRankStage(stage string, dur time.Duration) {
	if m != nil {
		m.rankStage.WithLabelValues(stage).Observe(dur.Seconds())
	}
}

func (m *Metrics) ObserveRankCandidates(stage string, n int) {
	if m != nil {
		m.rankCandidates.WithLabelValues(stage).Observe(float64(n))
	}
}

func (m *Metrics) IncRankEmpty(step string) {
	if m != nil {
		m.rankEmpty.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) ObservePreferenceDrops(n int) {
	if m != nil {
		m.prefsDropped.Observe(float64(n))
	}
}

func (m *Metrics) IncEncoderCache(result string) {
	if m != nil {
		m.encoderCache.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveIndexBootstrap(backend, result, code string) {
	if m != nil {
		m.indexBootstrap.WithLabelValues(backend, result, code).Inc()
	}
}

func (m *Metrics) SetCorpusSize(games, rows int) {
	if m == nil {
		return
	}
	m.catalogGames.Set(float64(games))
	m.indexRows.Set(float64(rows))
}
