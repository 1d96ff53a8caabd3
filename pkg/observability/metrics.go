package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/slotfill/pkg/domain"
)

// Metrics holds the engine collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Transitions *prometheus.CounterVec
	Extractions *prometheus.CounterVec
	Completed   prometheus.Counter
	Turns       *prometheus.HistogramVec
	Enrichments *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "slotfill"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of dialogue state transitions",
			},
			[]string{"from", "to"},
		),
		Extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Total number of values written into memory",
			},
			[]string{"kind", "source"},
		),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_completed_total",
			Help:      "Total number of conversations that collected every field",
		}),
		Turns: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Duration of a single user turn, including persistence",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"transport"},
		),
		Enrichments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichments_total",
				Help:      "Background enrichment outcomes",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.Transitions,
		m.Extractions,
		m.Completed,
		m.Turns,
		m.Enrichments,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTurn records the duration of a turn served by transport.
func (m *Metrics) ObserveTurn(transport string, started time.Time) {
	m.Turns.WithLabelValues(transport).Observe(time.Since(started).Seconds())
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnExtract: func(_ context.Context, e *domain.ExtractEvent) {
			m.Extractions.WithLabelValues(string(e.Kind), e.Source).Inc()
		},
		OnComplete: func(context.Context, *domain.State) {
			m.Completed.Inc()
		},
	}
}
