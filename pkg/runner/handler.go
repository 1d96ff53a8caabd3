package runner

import (
	"context"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a bot turn to the user.
	Output(ctx context.Context, resp *Response) error

	// Input reads one utterance. An empty string is a valid no-input turn.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. errors, status updates).
	// This is distinct from prompt rendering.
	SystemOutput(ctx context.Context, msg string) error
}
