// Package metrics 汇总抓取与搜索相关的 Prometheus 指标。
//
// 所有方法对 nil *Metrics 安全：未启用指标时调用方无需判空。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	searchTotal   *prometheus.CounterVec
	candidates    *prometheus.HistogramVec
	resolveTotal  *prometheus.CounterVec
}

// New 创建并注册全部指标。reg 为 nil 时使用独立的 Registry（便于测试）。
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avmeta",
			Name:      "fetch_total",
			Help:      "Page fetches by host and outcome.",
		}, []string{"host", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avmeta",
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch latency by host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avmeta",
			Name:      "search_total",
			Help:      "Searches by family and outcome.",
		}, []string{"family", "outcome"}),
		candidates: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avmeta",
			Name:      "search_candidates",
			Help:      "Candidates returned per successful search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"family"}),
		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avmeta",
			Name:      "resolve_total",
			Help:      "Resolve and image requests by family, operation and outcome.",
		}, []string{"family", "op", "outcome"}),
	}
	reg.MustRegister(m.fetchTotal, m.fetchDuration, m.searchTotal, m.candidates, m.resolveTotal)
	return m
}

func (m *Metrics) ObserveFetch(host, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(host, outcome).Inc()
	m.fetchDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) ObserveSearch(family, outcome string, n int) {
	if m == nil {
		return
	}
	m.searchTotal.WithLabelValues(family, outcome).Inc()
	if outcome == "ok" {
		m.candidates.WithLabelValues(family).Observe(float64(n))
	}
}

func (m *Metrics) ObserveResolve(family, op, outcome string) {
	if m == nil {
		return
	}
	m.resolveTotal.WithLabelValues(family, op, outcome).Inc()
}
