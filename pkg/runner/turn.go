package runner

import (
	"context"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/messages"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/schema"
)

// Response is a state together with the bot prompt it calls for.
type Response struct {
	State    *domain.State     `json:"state"`
	Prompt   messages.Prompt   `json:"prompt"`
	Terminal bool              `json:"terminal"`
	Summary  []Field           `json:"summary,omitempty"`
	Diff     *domain.StateDiff `json:"diff,omitempty"`
}

// Field is one collected value, in plan order.
type Field struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Confirmed bool   `json:"confirmed"`
}

// Summary lists the present main values of s in plan order.
func Summary(s *domain.State) []Field {
	var fields []Field
	for _, main := range s.Plan.Mains() {
		slot, ok := s.Memory[main.ID]
		if !ok {
			continue
		}
		fields = append(fields, Field{
			ID:        main.ID,
			Label:     main.Label,
			Value:     slot.Value.String(),
			Confirmed: slot.Confirmed,
		})
	}
	return fields
}

// Present renders the prompt for state and records it as a bot turn.
func Present(eng ports.Engine, tpl *schema.Template, state *domain.State) *Response {
	prompt := eng.Prompt(tpl, state)
	next := state.WithTurn(prompt.Turn(state.Mode))
	resp := &Response{State: next, Prompt: prompt, Terminal: next.Terminal()}
	if resp.Terminal {
		resp.Summary = Summary(next)
	}
	return resp
}

// Start creates a conversation and renders its opening prompt.
func Start(ctx context.Context, eng ports.Engine, sessionID string, tpl *schema.Template) (*Response, error) {
	state, err := eng.Init(ctx, sessionID, tpl)
	if err != nil {
		return nil, err
	}
	return Present(eng, tpl, state), nil
}

// Respond advances state with utterance and renders the next prompt.
// The returned diff compares the input state with the new one, bot turn included.
func Respond(ctx context.Context, eng ports.Engine, tpl *schema.Template, state *domain.State, utterance string) (*Response, error) {
	next, err := eng.Advance(ctx, state, utterance)
	if err != nil {
		return nil, err
	}
	resp := Present(eng, tpl, next)
	resp.Diff = domain.Diff(state, resp.State)
	return resp, nil
}
