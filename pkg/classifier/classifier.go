// Package classifier turns a user message and a workflow summary into a typed IntentResult.
//
// Classification never fails outward: provider errors and unusable model output resolve
// to a general_question result with low confidence.
package classifier

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/extract"
	"github.com/aretw0/dramaflow/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed intent.schema.json
var intentSchema []byte

const (
	// ReasonUnparsable is the fallback reasoning when the reply carries no JSON object.
	ReasonUnparsable = "无法解析意图"
	// ReasonErrorPrefix starts the fallback reasoning for provider and decode errors.
	ReasonErrorPrefix = "解析错误: "

	ConfidenceNoPayload = 0.5
	ConfidenceError     = 0.3

	DefaultTemperature float32 = 0.7
	DefaultTimeout             = 60 * time.Second
)

// ErrSchema is returned by Parse when the decoded object has the wrong shape.
var ErrSchema = errors.New("intent result does not match schema")

// Outcome is a classification with its provenance.
type Outcome struct {
	Result domain.IntentResult
	// Fallback is true when Result was synthesized instead of read from the model.
	Fallback bool
	// Err is the cause of a fallback. It is informational only.
	Err error
}

// Classifier asks the completion provider to label a message with one of the nine intents.
type Classifier struct {
	provider    ports.CompletionProvider
	instruction string
	schema      *gojsonschema.Schema
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTemperature sets the sampling temperature of classification calls.
func WithTemperature(t float32) Option {
	return func(c *Classifier) {
		c.temperature = t
	}
}

// WithTimeout bounds each classification call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.timeout = d
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates a classifier driven by the router instruction.
func New(provider ports.CompletionProvider, instruction string, opts ...Option) (*Classifier, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(intentSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile intent schema: %w", err)
	}
	c := &Classifier{
		provider:    provider,
		instruction: instruction,
		schema:      schema,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Identify classifies message. It always returns a result from the closed intent enum.
func (c *Classifier) Identify(ctx context.Context, message, summary string) domain.IntentResult {
	return c.Classify(ctx, message, summary).Result
}

// Classify is Identify with the fallback provenance exposed.
func (c *Classifier) Classify(ctx context.Context, message, summary string) Outcome {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.provider.Complete(ctx, ports.CompletionRequest{
		Instruction: c.instruction,
		Context:     summary,
		Message:     message,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Warn("Intent classification call failed", "err", err)
		return Outcome{Result: Fallback(ConfidenceError, ReasonErrorPrefix+err.Error()), Fallback: true, Err: err}
	}

	result, err := c.Parse(raw)
	if err != nil {
		c.logger.Warn("Intent reply unusable, falling back", "err", err, "reply_size", len(raw))
		return Outcome{Result: result, Fallback: true, Err: err}
	}

	c.logger.Debug("Intent classified",
		"intent", result.Intent,
		"confidence", result.Confidence,
		"entities", result.Entities,
	)
	return Outcome{Result: result}
}

// Parse reads an IntentResult out of a raw model reply.
// On error the returned result is the matching fallback, so it is always usable.
func (c *Classifier) Parse(raw string) (domain.IntentResult, error) {
	if !extract.HasSpan(raw) {
		return Fallback(ConfidenceNoPayload, ReasonUnparsable), domain.ErrParseFailure
	}

	obj, err := extract.Object(raw)
	if err != nil {
		return Fallback(ConfidenceError, ReasonErrorPrefix+err.Error()), err
	}

	validation, err := c.schema.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrSchema, err)
		return Fallback(ConfidenceError, ReasonErrorPrefix+err.Error()), err
	}
	if !validation.Valid() {
		problems := make([]string, 0, len(validation.Errors()))
		for _, e := range validation.Errors() {
			problems = append(problems, e.Field()+": "+e.Description())
		}
		err = fmt.Errorf("%w: %s", ErrSchema, strings.Join(problems, "; "))
		return Fallback(ConfidenceError, ReasonErrorPrefix+err.Error()), err
	}

	// Confidence is advisory: a value that does not read as a number becomes 0 instead of
	// discarding the intent.
	confidence := readConfidence(obj["confidence"])
	fields := make(map[string]any, len(obj))
	for k, v := range obj {
		if k != "confidence" {
			fields[k] = v
		}
	}

	var decoded domain.IntentResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return Fallback(ConfidenceError, ReasonErrorPrefix+err.Error()), err
	}
	if err := decoder.Decode(fields); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
		return Fallback(ConfidenceError, ReasonErrorPrefix+err.Error()), err
	}

	intent, known := domain.ParseIntent(string(decoded.Intent))
	if !known {
		c.logger.Warn("Unknown intent label, treating as general question", "label", decoded.Intent)
	}
	decoded.Intent = intent
	decoded.Confidence = clamp(confidence)
	return decoded, nil
}

// Fallback builds the general_question result used when classification is not possible.
func Fallback(confidence float64, reason string) domain.IntentResult {
	return domain.IntentResult{
		Intent:     domain.IntentGeneralQuestion,
		Confidence: confidence,
		Entities:   domain.Entities{},
		Reasoning:  reason,
	}
}

func readConfidence(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
