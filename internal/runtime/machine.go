// Package runtime routes one classified message to a handler agent and derives the next
// workflow state.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/agent"
	"github.com/aretw0/dramaflow/pkg/classifier"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
)

// Classifier labels a message. *classifier.Classifier implements it.
type Classifier interface {
	Classify(ctx context.Context, message, summary string) classifier.Outcome
}

// Result is the outcome of one processed message.
type Result struct {
	// Classification is what the classifier returned.
	Classification domain.IntentResult
	// Intent is the intent actually routed on.
	Intent      domain.Intent
	Handler     domain.HandlerID
	AgentName   string
	Response    string
	State       *domain.WorkflowState
	Turn        domain.ConversationTurn
	RankingData []domain.CatalogItem
	// Err is set when the handler failed. Response then holds the degraded text and
	// State equals the input state.
	Err error
}

// Machine is the workflow dispatcher. It holds no per-session data and is safe to share.
type Machine struct {
	classifier Classifier
	agents     *agent.Registry
	catalog    ports.Catalog
	rules      map[domain.Intent]rule
	threshold  float64
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithConfidenceThreshold reroutes results below t to general_question. Zero disables it.
func WithConfidenceThreshold(t float64) Option {
	return func(m *Machine) {
		m.threshold = t
	}
}

// WithLifecycleHooks sets the observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a dispatcher. It fails when the transition table or the registry
// does not cover every intent and handler.
func NewMachine(cls Classifier, agents *agent.Registry, catalog ports.Catalog, opts ...Option) (*Machine, error) {
	m := &Machine{
		classifier: cls,
		agents:     agents,
		catalog:    catalog,
		rules:      defaultRules(),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := checkRules(m.rules); err != nil {
		return nil, err
	}
	for _, id := range domain.HandlerIDs() {
		if id == domain.HandlerRouter {
			continue
		}
		if _, ok := agents.Get(id); !ok {
			return nil, fmt.Errorf("no agent registered for handler %q", id)
		}
	}
	return m, nil
}

// Process handles one user message against state. state is never modified; the next
// state is returned in Result.State.
//
// Handler failures are not errors: they yield a degraded Result with the state unchanged.
// The returned error covers only failures outside the conversation (catalog lookup).
func (m *Machine) Process(ctx context.Context, state *domain.WorkflowState, message string) (*Result, error) {
	if state == nil {
		state = domain.NewWorkflowState()
	}
	summary := BuildContext(state)

	outcome := m.classifier.Classify(ctx, message, summary)
	routed := outcome.Result.Intent
	if m.threshold > 0 && outcome.Result.Confidence < m.threshold {
		routed = domain.IntentGeneralQuestion
	}
	if m.hooks.OnIntentClassified != nil {
		m.hooks.OnIntentClassified(ctx, &domain.IntentEvent{
			EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventIntentClassified},
			Result:    outcome.Result,
			Routed:    routed,
			Fallback:  outcome.Fallback,
		})
	}

	d := m.rules[routed](input{
		state:   state,
		message: message,
		result:  outcome.Result,
		summary: summary,
	})

	var ranking []domain.CatalogItem
	if d.ranking {
		items, err := m.catalog.ListItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list catalog: %w", err)
		}
		ranking = items
	}

	handler, ok := m.agents.Get(d.handler)
	if !ok {
		return nil, fmt.Errorf("no agent registered for handler %q", d.handler)
	}

	start := m.now()
	response, err := handler.Respond(ctx, d.message, d.context)
	elapsed := m.now().Sub(start)
	if m.hooks.OnHandlerCall != nil {
		m.hooks.OnHandlerCall(ctx, &domain.HandlerEvent{
			EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventHandlerCall},
			Handler:   d.handler,
			Duration:  elapsed,
			IsError:   err != nil,
		})
	}

	next := state.Clone()
	if err == nil && d.mutate != nil {
		d.mutate(next)
	}

	if next.CurrentStep != state.CurrentStep && m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventTransition},
			Intent:    routed,
			From:      state.CurrentStep,
			To:        next.CurrentStep,
		})
	}

	m.logger.Info("Message dispatched",
		"intent", routed,
		"confidence", outcome.Result.Confidence,
		"handler", d.handler,
		"step", next.CurrentStep,
		"duration", elapsed,
		"failed", err != nil,
	)

	return &Result{
		Classification: outcome.Result,
		Intent:         routed,
		Handler:        d.handler,
		AgentName:      handler.Name(),
		Response:       response,
		State:          next,
		RankingData:    ranking,
		Err:            err,
		Turn: domain.ConversationTurn{
			HandlerID:   d.handler,
			Agent:       handler.Name(),
			UserMessage: message,
			Response:    response,
			Failed:      err != nil,
			Timestamp:   start,
		},
	}, nil
}
