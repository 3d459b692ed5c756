package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventIntentClassified EventType = "intent_classified"
	EventHandlerCall      EventType = "handler_call"
	EventTransition       EventType = "transition"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// IntentEvent is emitted once per message after classification.
type IntentEvent struct {
	EventBase
	Result IntentResult `json:"result"`
	// Routed differs from Result.Intent when a confidence threshold rerouted the message.
	Routed   Intent `json:"routed"`
	Fallback bool   `json:"fallback"`
}

// HandlerEvent is emitted after a handler returned (successfully or not).
type HandlerEvent struct {
	EventBase
	Handler  HandlerID     `json:"handler"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// TransitionEvent is emitted when a message moved the workflow to another step.
type TransitionEvent struct {
	EventBase
	Intent Intent `json:"intent"`
	From   Step   `json:"from"`
	To     Step   `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnIntentClassified func(context.Context, *IntentEvent)
	OnHandlerCall      func(context.Context, *HandlerEvent)
	OnTransition       func(context.Context, *TransitionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnIntentClassified: chain(h.OnIntentClassified, other.OnIntentClassified),
		OnHandlerCall:      chain(h.OnHandlerCall, other.OnHandlerCall),
		OnTransition:       chain(h.OnTransition, other.OnTransition),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
