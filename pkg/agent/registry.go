package agent

import (
	"fmt"

	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/ports"
)

// Registry holds one Agent per handler, plus the router persona used by the classifier.
type Registry struct {
	router Persona
	agents map[domain.HandlerID]*Agent
	order  []domain.HandlerID
}

// NewRegistry builds an agent for every non-router persona.
func NewRegistry(personas []Persona, provider ports.CompletionProvider, opts ...Option) (*Registry, error) {
	r := &Registry{
		agents: make(map[domain.HandlerID]*Agent, len(personas)),
	}
	for _, p := range personas {
		if p.ID == domain.HandlerRouter {
			r.router = p
			continue
		}
		r.agents[p.ID] = New(p, provider, opts...)
		r.order = append(r.order, p.ID)
	}
	if r.router.Instruction == "" {
		return nil, fmt.Errorf("persona %q is missing", domain.HandlerRouter)
	}
	return r, nil
}

// Get returns the agent bound to id.
func (r *Registry) Get(id domain.HandlerID) (*Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// Router returns the persona whose instruction drives intent classification.
func (r *Registry) Router() Persona {
	return r.router
}

// Info lists the router first, then every handler in table order.
func (r *Registry) Info() []domain.AgentInfo {
	out := make([]domain.AgentInfo, 0, len(r.order)+1)
	out = append(out, r.router.Info())
	for _, id := range r.order {
		out = append(out, r.agents[id].Info())
	}
	return out
}
