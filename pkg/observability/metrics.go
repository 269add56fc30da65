package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the session core. A nil
// *Metrics is valid and records nothing, so callers can wire metrics in
// only where a registry exists.
type Metrics struct {
	registry *prometheus.Registry

	// Token lifecycle
	RefreshTotal          *prometheus.CounterVec
	RefreshCoalescedTotal prometheus.Counter

	// Session
	LoginsTotal  *prometheus.CounterVec
	LogoutsTotal *prometheus.CounterVec

	// Policy enforcement
	GuardDecisionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the given registry. A nil
// registry creates a private one (useful for tests).
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_token_refresh_total",
				Help: "Total token refresh attempts by result",
			},
			[]string{"result"},
		),
		RefreshCoalescedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "concierge_token_refresh_coalesced_total",
				Help: "Refresh calls that joined an in-flight exchange instead of issuing one",
			},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_logins_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		),
		LogoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_logouts_total",
				Help: "Total logouts by trigger (user, forced)",
			},
			[]string{"trigger"},
		),
		GuardDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_guard_decisions_total",
				Help: "Guard decisions by guard kind and outcome",
			},
			[]string{"guard", "outcome"},
		),
	}

	registry.MustRegister(
		m.RefreshTotal,
		m.RefreshCoalescedTotal,
		m.LoginsTotal,
		m.LogoutsTotal,
		m.GuardDecisionsTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRefresh records a refresh attempt outcome.
func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(result).Inc()
}

// ObserveRefreshCoalesced records a refresh call that shared an in-flight
// exchange.
func (m *Metrics) ObserveRefreshCoalesced() {
	if m == nil {
		return
	}
	m.RefreshCoalescedTotal.Inc()
}

// ObserveLogin records a login attempt outcome.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// ObserveLogout records a logout and what triggered it.
func (m *Metrics) ObserveLogout(trigger string) {
	if m == nil {
		return
	}
	m.LogoutsTotal.WithLabelValues(trigger).Inc()
}

// ObserveGuardDecision records a policy enforcement outcome.
func (m *Metrics) ObserveGuardDecision(guard, outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisionsTotal.WithLabelValues(guard, outcome).Inc()
}
