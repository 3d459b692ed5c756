package observability

import (
	"context"

	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dramaflow"

// Metrics holds the dispatcher collectors.
type Metrics struct {
	Intents     *prometheus.CounterVec
	HandlerCall *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	Transitions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Classified messages by routed intent and whether the classifier fell back.",
			},
			[]string{"intent", "fallback"},
		),
		HandlerCall: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_calls_total",
				Help:      "Handler agent invocations by outcome.",
			},
			[]string{"handler", "outcome"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handler_duration_seconds",
				Help:      "Duration of handler agent calls.",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"handler"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_transitions_total",
				Help:      "Workflow step changes.",
			},
			[]string{"from", "to"},
		),
	}

	for _, c := range []prometheus.Collector{m.Intents, m.HandlerCall, m.Latency, m.Transitions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks records every event into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIntentClassified: func(_ context.Context, e *domain.IntentEvent) {
			fallback := "false"
			if e.Fallback {
				fallback = "true"
			}
			m.Intents.WithLabelValues(string(e.Routed), fallback).Inc()
		},
		OnHandlerCall: func(_ context.Context, e *domain.HandlerEvent) {
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			m.HandlerCall.WithLabelValues(string(e.Handler), outcome).Inc()
			m.Latency.WithLabelValues(string(e.Handler)).Observe(e.Duration.Seconds())
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
	}
}
