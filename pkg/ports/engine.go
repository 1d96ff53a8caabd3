package ports

import (
	"context"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/messages"
	"github.com/aretw0/slotfill/pkg/schema"
)

// Engine defines the stateless conversation surface used by adapters.
// Adapters own persistence; the engine only computes the next state.
type Engine interface {
	// Init builds the initial state of a conversation over tpl.
	Init(ctx context.Context, sessionID string, tpl *schema.Template) (*domain.State, error)

	// Advance consumes one user utterance and returns the next state. The input state is never modified.
	Advance(ctx context.Context, state *domain.State, utterance string) (*domain.State, error)

	// Prompt resolves the bot message for the given state.
	Prompt(tpl *schema.Template, state *domain.State) messages.Prompt
}
