// Package metrics exposes dialog engine activity as Prometheus collectors fed
// by lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors.
type Metrics struct {
	NodeVisits    *prometheus.CounterVec
	Turns         *prometheus.CounterVec
	TurnDuration  prometheus.Histogram
	BeliefUpdates prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagraph_node_visits_total",
				Help: "Total number of nodes handled, by node type",
			},
			[]string{"type"},
		),
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagraph_turns_total",
				Help: "Total number of dialog turns, by outcome",
			},
			[]string{"outcome"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagraph_turn_duration_seconds",
				Help:    "Duration of dialog turns",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		BeliefUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "diagraph_belief_updates_total",
				Help: "Total number of belief state variables written by UPDATE nodes",
			},
		),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{m.NodeVisits, m.Turns, m.TurnDuration, m.BeliefUpdates} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeType.String()).Inc()
		},
		OnBeliefUpdate: func(_ context.Context, _ *domain.BeliefEvent) {
			m.BeliefUpdates.Inc()
		},
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.Outcome)).Inc()
			m.TurnDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
