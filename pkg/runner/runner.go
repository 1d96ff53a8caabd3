package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/slotfill/internal/logging"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/schema"
)

// DefaultExitWords end an interactive session without advancing.
var DefaultExitWords = []string{"exit", "quit"}

// Runner handles the conversation loop using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for resumable sessions.
	// If nil, sessions are ephemeral.
	Store ports.StateStore

	SessionID    string
	MaxInputSize int
	ExitWords    []string
}

// NewRunner creates a Runner reading stdin and writing stdout unless configured otherwise.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{ExitWords: DefaultExitWords}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run executes the conversation until it completes, the input ends or the user exits.
// If state is nil a new conversation is started from tpl; otherwise it is resumed.
// It returns the last state reached, which is also the last one saved.
func (r *Runner) Run(ctx context.Context, eng ports.Engine, tpl *schema.Template, state *domain.State) (*domain.State, error) {
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	runCtx := signals.Context()

	var resp *Response
	if state == nil {
		id := r.SessionID
		if id == "" {
			id = uuid.NewString()
		}
		started, err := Start(runCtx, eng, id, tpl)
		if err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
		resp = started
		r.Logger.Info("session started", "session_id", id, "template", tpl.ID)
	} else {
		resp = Present(eng, tpl, state)
		r.Logger.Info("session resumed", "session_id", state.SessionID, "mode", state.Mode)
	}

	for {
		if err := r.persist(runCtx, resp.State); err != nil {
			return resp.State, err
		}
		if err := r.Handler.Output(runCtx, resp); err != nil {
			return resp.State, fmt.Errorf("failed to render prompt: %w", err)
		}
		if resp.Terminal {
			r.Logger.Info("session completed", "session_id", resp.State.SessionID)
			return resp.State, nil
		}

		utterance, err := r.read(runCtx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				signals.CheckRace()
				if ctxErr := runCtx.Err(); ctxErr != nil {
					return resp.State, ctxErr
				}
				return resp.State, nil
			}
			return resp.State, err
		}
		if r.isExit(utterance) {
			r.Logger.Info("session left", "session_id", resp.State.SessionID, "mode", resp.State.Mode)
			return resp.State, nil
		}

		next, err := Respond(runCtx, eng, tpl, resp.State, utterance)
		if err != nil {
			return resp.State, fmt.Errorf("failed to advance: %w", err)
		}
		r.Logger.Debug("turn applied",
			"session_id", next.State.SessionID,
			"from", resp.State.Mode,
			"to", next.State.Mode,
		)
		resp = next
	}
}

// read returns the next sanitized utterance, asking again after rejected input.
func (r *Runner) read(ctx context.Context) (string, error) {
	for {
		line, err := r.Handler.Input(ctx)
		if err != nil {
			return "", err
		}
		var clean string
		if r.MaxInputSize > 0 {
			clean, err = SanitizeInputLimit(line, r.MaxInputSize)
		} else {
			clean, err = SanitizeInput(line)
		}
		if err == nil {
			return clean, nil
		}
		r.Logger.Warn("input rejected", "err", err)
		if outErr := r.Handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); outErr != nil {
			return "", outErr
		}
	}
}

func (r *Runner) isExit(utterance string) bool {
	for _, w := range r.ExitWords {
		if strings.EqualFold(strings.TrimSpace(utterance), w) {
			return true
		}
	}
	return false
}

func (r *Runner) persist(ctx context.Context, state *domain.State) error {
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Save(ctx, state.SessionID, state); err != nil {
		return fmt.Errorf("failed to save session %s: %w", state.SessionID, err)
	}
	return nil
}
