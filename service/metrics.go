package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 请求结果标签。
const (
	OutcomeOK        = "ok"
	OutcomeNoProfile = "no_profile"
	OutcomeBadInput  = "bad_input"
	OutcomeError     = "error"
)

// Metrics 是推荐服务的 Prometheus 指标。
type Metrics struct {
	Requests      *prometheus.CounterVec
	Latency       prometheus.Histogram
	CatalogItems  prometheus.Gauge
	Fits          prometheus.Counter
	ResultsLength prometheus.Histogram
}

// NewMetrics 在 reg 上注册指标；reg 为 nil 时使用 prometheus.DefaultRegisterer。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gamerec_recommend_requests_total",
				Help: "Total number of recommendation requests by outcome",
			},
			[]string{"outcome"},
		),
		Latency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gamerec_recommend_duration_seconds",
				Help:    "Duration of recommendation requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		CatalogItems: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "gamerec_catalog_items",
				Help: "Number of searchable items in the current catalog index",
			},
		),
		Fits: f.NewCounter(
			prometheus.CounterOpts{
				Name: "gamerec_fits_total",
				Help: "Total number of catalog index rebuilds",
			},
		),
		ResultsLength: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gamerec_recommend_results",
				Help:    "Number of items returned per successful request",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
	}
}

func (m *Metrics) observe(outcome string, seconds float64, results int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.Latency.Observe(seconds)
	if outcome == OutcomeOK {
		m.ResultsLength.Observe(float64(results))
	}
}

func (m *Metrics) fitted(items int) {
	if m == nil {
		return
	}
	m.Fits.Inc()
	m.CatalogItems.Set(float64(items))
}
