// Package agent binds fixed persona instructions to a completion provider.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
)

// ErrorResponsePrefix starts the text returned in place of a failed completion.
const ErrorResponsePrefix = "抱歉，发生错误: "

const (
	DefaultTemperature float32 = 0.7
	DefaultTimeout             = 60 * time.Second
)

// Agent produces one response per invocation under a fixed persona.
type Agent struct {
	persona     Persona
	provider    ports.CompletionProvider
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithTemperature sets the sampling temperature sent to the provider.
func WithTemperature(t float32) Option {
	return func(a *Agent) {
		a.temperature = t
	}
}

// WithTimeout bounds each provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.timeout = d
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New creates an agent for persona.
func New(persona Persona, provider ports.CompletionProvider, opts ...Option) *Agent {
	a := &Agent{
		persona:     persona,
		provider:    provider,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) ID() domain.HandlerID { return a.persona.ID }

func (a *Agent) Name() string { return a.persona.Name }

func (a *Agent) Info() domain.AgentInfo { return a.persona.Info() }

// Respond asks the provider for a reply to message, with the workflow summary as a
// secondary directive.
//
// On failure the returned text embeds the error and is still a usable reply; the error is
// returned alongside so callers can tell a degraded answer apart. Failed calls are not retried.
func (a *Agent) Respond(ctx context.Context, message, summary string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.provider.Complete(ctx, ports.CompletionRequest{
		Instruction: a.persona.Instruction,
		Context:     summary,
		Message:     message,
		Temperature: a.temperature,
	})
	if err != nil {
		a.logger.Warn("Handler call failed", "handler", a.persona.ID, "err", err)
		return ErrorResponsePrefix + err.Error(), err
	}
	return text, nil
}
