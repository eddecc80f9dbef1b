package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Failure kinds reported by the failures counter.
const (
	kindRateFetch    = "rate_fetch"
	kindUnknownAsset = "unknown_asset"
	kindDivideByZero = "divide_by_zero"
	kindOther        = "other"
)

// Metrics holds the prometheus collectors updated by an [Engine].
// A nil *Metrics is valid and records nothing.
// One Metrics value may be shared by many engines.
type Metrics struct {
	Requests prometheus.Counter
	Stale    prometheus.Counter
	Failures *prometheus.CounterVec
	Settled  prometheus.Counter
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxswap_engine_requests_total",
			Help: "Total number of conversion requests scheduled",
		}),
		Stale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxswap_engine_stale_total",
			Help: "Total number of results discarded because a newer request superseded them",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxswap_engine_failures_total",
			Help: "Total number of conversion requests that failed",
		}, []string{"kind"}),
		Settled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxswap_engine_settled_total",
			Help: "Total number of conversion results applied",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Stale, m.Failures, m.Settled)
	}
	return m
}

func (m *Metrics) request() {
	if m != nil {
		m.Requests.Inc()
	}
}

func (m *Metrics) stale() {
	if m != nil {
		m.Stale.Inc()
	}
}

func (m *Metrics) failure(kind string) {
	if m != nil {
		m.Failures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) settled() {
	if m != nil {
		m.Settled.Inc()
	}
}
