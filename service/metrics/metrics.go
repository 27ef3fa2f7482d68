// Package metrics exposes Prometheus collectors for rate refreshes,
// persistence and state transitions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fxpad"

type Metrics struct {
	Registry *prometheus.Registry

	refreshes    *prometheus.CounterVec
	rateAge      prometheus.Gauge
	persistFails *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_refresh_total",
			Help:      "Rate refresh attempts by result.",
		}, []string{"result"}),
		rateAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_timestamp_seconds",
			Help:      "Capture time of the rate table in use.",
		}),
		persistFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed blob writes by key.",
		}, []string{"key"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "State transitions by event and result.",
		}, []string{"event", "result"}),
	}

	m.Registry.MustRegister(m.refreshes, m.rateAge, m.persistFails, m.transitions)
	return m
}

// Refresh counts a refresh outcome: ok, failed or stale
func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// RatesApplied records the capture time of a newly applied table
func (m *Metrics) RatesApplied(ts time.Time) {
	if m == nil {
		return
	}
	m.rateAge.Set(float64(ts.Unix()))
}

// PersistFailed counts a failed write of key
func (m *Metrics) PersistFailed(key string) {
	if m == nil {
		return
	}
	m.persistFails.WithLabelValues(key).Inc()
}

// Transition counts a state transition
func (m *Metrics) Transition(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.transitions.WithLabelValues(event, result).Inc()
}
