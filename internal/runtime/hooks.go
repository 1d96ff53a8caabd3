package runtime

import (
	"context"

	"github.com/aretw0/slotfill/pkg/domain"
)

func (e *Engine) emitTransition(ctx context.Context, from, to *domain.State) {
	if e.hooks.OnTransition == nil {
		return
	}
	ev := &domain.TransitionEvent{
		SessionID: to.SessionID,
		To:        to.Mode,
		SubID:     to.CurrentSubID,
	}
	if from != nil {
		ev.From = from.Mode
	}
	if main, ok := to.CurrentMain(); ok {
		ev.MainID = main.ID
	}
	e.hooks.OnTransition(ctx, ev)
}

func (e *Engine) emitExtract(ctx context.Context, sessionID, fieldID string, kind domain.Kind, source string) {
	if e.hooks.OnExtract == nil {
		return
	}
	e.hooks.OnExtract(ctx, &domain.ExtractEvent{
		SessionID: sessionID,
		FieldID:   fieldID,
		Kind:      kind,
		Source:    source,
	})
}

func (e *Engine) emitComplete(ctx context.Context, s *domain.State) {
	if e.hooks.OnComplete == nil {
		return
	}
	e.hooks.OnComplete(ctx, s)
}
