package dramaflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/internal/runtime"
	"github.com/aretw0/dramaflow/pkg/adapters/memory"
	"github.com/aretw0/dramaflow/pkg/agent"
	"github.com/aretw0/dramaflow/pkg/catalog"
	"github.com/aretw0/dramaflow/pkg/classifier"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
	"github.com/aretw0/dramaflow/pkg/session"
)

// DefaultSessionID is used when a caller does not name a session.
const DefaultSessionID = "default"

// Engine is the high-level entry point of the orchestrator.
// It owns the session registry and dispatches every message through the workflow machine.
type Engine struct {
	machine  *runtime.Machine
	sessions *session.Manager
	agents   *agent.Registry
	catalog  ports.Catalog

	personas    []agent.Persona
	store       ports.SessionStore
	locker      ports.DistributedLocker
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	threshold   float64
	temperature float32
	timeout     time.Duration
}

// ChatResult is the answer to one message.
type ChatResult struct {
	SessionID      string
	Response       string
	AgentName      string
	Handler        domain.HandlerID
	Intent         domain.Intent
	Classification domain.IntentResult
	State          *domain.WorkflowState
	RankingData    []domain.CatalogItem
	// Diff lists what the message changed in the session; nil when nothing did.
	Diff *domain.WorkflowDiff
	// Degraded is true when the handler failed and Response carries the error text.
	Degraded bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPersonas replaces the built-in persona table.
func WithPersonas(personas []agent.Persona) Option {
	return func(e *Engine) {
		e.personas = personas
	}
}

// WithCatalog replaces the built-in drama ranking.
func WithCatalog(c ports.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithStore replaces the in-memory session store.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serializes sessions across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithConfidenceThreshold routes classifications below t to the general agent. Off by default.
func WithConfidenceThreshold(t float64) Option {
	return func(e *Engine) {
		e.threshold = t
	}
}

// WithTemperature sets the sampling temperature of every model call.
func WithTemperature(t float32) Option {
	return func(e *Engine) {
		e.temperature = t
	}
}

// WithTimeout bounds every model call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// New builds an engine that talks to provider.
func New(provider ports.CompletionProvider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("completion provider is required")
	}

	eng := &Engine{
		temperature: agent.DefaultTemperature,
		timeout:     agent.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.personas == nil {
		personas, err := agent.DefaultPersonas()
		if err != nil {
			return nil, fmt.Errorf("failed to load personas: %w", err)
		}
		eng.personas = personas
	}
	if eng.catalog == nil {
		items, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		eng.catalog = items
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	registry, err := agent.NewRegistry(eng.personas, provider,
		agent.WithTemperature(eng.temperature),
		agent.WithTimeout(eng.timeout),
		agent.WithLogger(eng.logger),
	)
	if err != nil {
		return nil, err
	}
	eng.agents = registry

	cls, err := classifier.New(provider, registry.Router().Instruction,
		classifier.WithTemperature(eng.temperature),
		classifier.WithTimeout(eng.timeout),
		classifier.WithLogger(eng.logger),
	)
	if err != nil {
		return nil, err
	}

	eng.machine, err = runtime.NewMachine(cls, registry, eng.catalog,
		runtime.WithConfidenceThreshold(eng.threshold),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	if err != nil {
		return nil, err
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// Chat processes one message in sessionID (created on first use).
// Messages of one session are handled one at a time, in arrival order.
func (e *Engine) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	sessionID = normalizeID(sessionID)

	var (
		res    *runtime.Result
		before *domain.Session
	)
	after, err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		before = s.Clone()
		r, err := e.machine.Process(ctx, s.State, message)
		if err != nil {
			return err
		}
		s.State = r.State
		s.History = append(s.History, r.Turn)
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Err != nil {
		e.logger.Warn("Handler failed, returning degraded reply",
			"session_id", sessionID,
			"handler", res.Handler,
			"err", res.Err,
		)
	}

	return &ChatResult{
		SessionID:      sessionID,
		Response:       res.Response,
		AgentName:      res.AgentName,
		Handler:        res.Handler,
		Intent:         res.Intent,
		Classification: res.Classification,
		State:          res.State,
		RankingData:    res.RankingData,
		Diff:           domain.Diff(before, after),
		Degraded:       res.Err != nil,
	}, nil
}

// Reset restores sessionID to the initial state. It reports false when the session is unknown.
func (e *Engine) Reset(ctx context.Context, sessionID string) (bool, error) {
	return e.sessions.Reset(ctx, normalizeID(sessionID))
}

// ResetWithDiff is Reset that also returns the cleared fields as a WorkflowDiff.
func (e *Engine) ResetWithDiff(ctx context.Context, sessionID string) (*domain.WorkflowDiff, bool, error) {
	return e.sessions.ResetWithDiff(ctx, normalizeID(sessionID))
}

// Workflow returns the current state of sessionID, creating the session if needed.
func (e *Engine) Workflow(ctx context.Context, sessionID string) (*domain.WorkflowState, error) {
	sess, err := e.sessions.GetOrCreate(ctx, normalizeID(sessionID))
	if err != nil {
		return nil, err
	}
	return sess.State, nil
}

// Session returns the full session record, or domain.ErrSessionNotFound.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, normalizeID(sessionID))
}

// SessionCount returns the number of live sessions.
func (e *Engine) SessionCount(ctx context.Context) (int, error) {
	return e.sessions.Count(ctx)
}

// Agents lists the router and the five handler agents.
func (e *Engine) Agents() []domain.AgentInfo {
	return e.agents.Info()
}

// Catalog returns the drama ranking served with query_ranking answers.
func (e *Engine) Catalog(ctx context.Context) ([]domain.CatalogItem, error) {
	return e.catalog.ListItems(ctx)
}

func normalizeID(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}
