package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/slotfill/pkg/domain"
)

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"main", e.MainID,
				"sub", e.SubID,
			)
		},
		OnExtract: func(ctx context.Context, e *domain.ExtractEvent) {
			logger.InfoContext(ctx, "extract",
				"session_id", e.SessionID,
				"field", e.FieldID,
				"kind", e.Kind,
				"source", e.Source,
			)
		},
		OnComplete: func(ctx context.Context, s *domain.State) {
			logger.InfoContext(ctx, "complete", "session_id", s.SessionID, "fields", len(s.Memory))
		},
	}
}

// Chain fans each event out to every hook set, in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var transitions []func(context.Context, *domain.TransitionEvent)
	var extracts []func(context.Context, *domain.ExtractEvent)
	var completes []func(context.Context, *domain.State)
	for _, h := range hooks {
		if h.OnTransition != nil {
			transitions = append(transitions, h.OnTransition)
		}
		if h.OnExtract != nil {
			extracts = append(extracts, h.OnExtract)
		}
		if h.OnComplete != nil {
			completes = append(completes, h.OnComplete)
		}
	}

	if len(transitions) > 0 {
		out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
			for _, fn := range transitions {
				fn(ctx, e)
			}
		}
	}
	if len(extracts) > 0 {
		out.OnExtract = func(ctx context.Context, e *domain.ExtractEvent) {
			for _, fn := range extracts {
				fn(ctx, e)
			}
		}
	}
	if len(completes) > 0 {
		out.OnComplete = func(ctx context.Context, s *domain.State) {
			for _, fn := range completes {
				fn(ctx, s)
			}
		}
	}
	return out
}
