package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/dramaflow/pkg/ports"
)

// ScriptedProvider is a ports.CompletionProvider test double.
// Replies are looked up by the exact user message first, then by instruction,
// then Default is used. Every request is recorded.
type ScriptedProvider struct {
	mu sync.Mutex

	ByMessage     map[string]string
	ByInstruction map[string]string
	Default       string
	// Err, when set, fails every call.
	Err error
	// Fn, when set, overrides every other rule.
	Fn func(ctx context.Context, req ports.CompletionRequest) (string, error)

	Requests []ports.CompletionRequest
}

// Complete implements ports.CompletionProvider.
func (p *ScriptedProvider) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	p.mu.Unlock()

	if p.Fn != nil {
		return p.Fn(ctx, req)
	}
	if p.Err != nil {
		return "", p.Err
	}
	if reply, ok := p.ByMessage[req.Message]; ok {
		return reply, nil
	}
	if reply, ok := p.ByInstruction[req.Instruction]; ok {
		return reply, nil
	}
	return p.Default, nil
}

// Calls returns a copy of the recorded requests.
func (p *ScriptedProvider) Calls() []ports.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.CompletionRequest(nil), p.Requests...)
}
