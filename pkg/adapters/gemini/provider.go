// Package gemini is a CompletionProvider backed by the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"
	DefaultModel = "gemini-2.5-flash"
)

var errEmptyReply = errors.New("empty reply")

// Provider sends each request as one generateContent call with the directives as the
// system instruction.
type Provider struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

type settings struct {
	baseURL string
	model   string
	logger  *slog.Logger
}

// Option configures a Provider.
type Option func(*settings)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New creates a provider for the Gemini API.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	s := settings{model: DefaultModel, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Provider{client: client, model: s.model, logger: s.logger}, nil
}

var _ ports.CompletionProvider = (*Provider)(nil)

// Complete implements ports.CompletionProvider.
func (p *Provider) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	directives := req.Directives()
	parts := make([]*genai.Part, 0, len(directives))
	for _, d := range directives {
		parts = append(parts, genai.NewPartFromText(d))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(req.Message, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: parts},
			Temperature:       genai.Ptr(req.Temperature),
		},
	)
	if err != nil {
		return "", &domain.ServiceError{Provider: ProviderName, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &domain.ServiceError{Provider: ProviderName, Err: errEmptyReply}
	}
	p.logger.Debug("Completion response", "model", p.model, "size", len(text))
	return text, nil
}
