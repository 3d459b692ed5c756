// Package openai is a CompletionProvider for OpenAI-compatible chat/completions endpoints.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	ProviderName   = "openai"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"

	// maxErrorMessage caps how much of an upstream error message ends up in the error text.
	maxErrorMessage = 512
)

var errNoChoices = errors.New("no choices in response")

// Client calls {baseURL}/chat/completions through the official SDK.
type Client struct {
	client sdk.Client
	model  string
	logger *slog.Logger
}

type settings struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*settings)

// WithBaseURL points the client at another OpenAI-compatible gateway.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.http = hc
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New creates a client. apiKey must come from configuration.
// The SDK's own retries are disabled: a failed call degrades the reply instead.
func New(apiKey string, opts ...Option) *Client {
	s := settings{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(s.baseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if s.http != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.http))
	}

	return &Client{
		client: sdk.NewClient(reqOpts...),
		model:  s.model,
		logger: s.logger,
	}
}

var _ ports.CompletionProvider = (*Client)(nil)

// Complete sends the directives as system messages followed by the user message.
// Failures are returned as *domain.ServiceError.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	directives := req.Directives()
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(directives)+1)
	for _, d := range directives {
		messages = append(messages, sdk.SystemMessage(d))
	}
	messages = append(messages, sdk.UserMessage(req.Message))

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(c.model),
		Messages:    messages,
		Temperature: sdk.Float(float64(req.Temperature)),
	})
	if err != nil {
		return "", c.fail(err)
	}
	c.logger.Debug("Completion response",
		"model", c.model,
		"latency", time.Since(start),
		"choices", len(resp.Choices),
	)

	if len(resp.Choices) == 0 {
		return "", c.fail(errNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

// fail maps SDK errors onto domain.ServiceError, keeping the HTTP status when there is one.
func (c *Client) fail(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return &domain.ServiceError{Provider: ProviderName, Err: err}
	}
	msg := apiErr.Message
	if msg == "" {
		msg = http.StatusText(apiErr.StatusCode)
	}
	return &domain.ServiceError{
		Provider:   ProviderName,
		StatusCode: apiErr.StatusCode,
		Err:        errors.New(truncate(msg, maxErrorMessage)),
	}
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
