package ports

import "context"

// ContextDirectivePrefix introduces the workflow summary handed to a model.
const ContextDirectivePrefix = "上下文信息："

// CompletionRequest is one persona-bound call to a text-completion service.
type CompletionRequest struct {
	// Instruction is the persona's primary directive.
	Instruction string
	// Context is an optional workflow summary, sent as a secondary directive.
	Context string
	// Message is the user turn.
	Message     string
	Temperature float32
}

// Directives returns the system-level directives in the order they must be sent.
func (r CompletionRequest) Directives() []string {
	out := []string{r.Instruction}
	if r.Context != "" {
		out = append(out, ContextDirectivePrefix+r.Context)
	}
	return out
}

// CompletionProvider is the external text-generation service.
// Complete returns the generated text, or an error (usually a *domain.ServiceError).
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionFunc adapts a plain function to CompletionProvider.
type CompletionFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f CompletionFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
