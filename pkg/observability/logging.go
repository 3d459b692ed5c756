package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/dramaflow/pkg/domain"
)

// LogHooks writes one debug line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIntentClassified: func(ctx context.Context, e *domain.IntentEvent) {
			logger.DebugContext(ctx, "intent_classified",
				"intent", e.Result.Intent,
				"routed", e.Routed,
				"confidence", e.Result.Confidence,
				"fallback", e.Fallback,
				"reasoning", e.Result.Reasoning,
			)
		},
		OnHandlerCall: func(ctx context.Context, e *domain.HandlerEvent) {
			logger.DebugContext(ctx, "handler_call",
				"handler", e.Handler,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"intent", e.Intent,
				"from", e.From,
				"to", e.To,
			)
		},
	}
}
