package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/slotfill/internal/logging"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/extract"
	"github.com/aretw0/slotfill/pkg/kinds"
)

// ChoosePrefix selects a sub directly while disambiguating a rejected value ("choose:dob_day").
const ChoosePrefix = "choose:"

// Engine is the core state machine runner.
type Engine struct {
	registry  *kinds.Registry
	locale    *kinds.Locale
	region    string
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	composite *extract.Composite
	mixed     *extract.Mixed
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRegistry replaces the built-in detectors.
func WithRegistry(r *kinds.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLocale sets the heuristics data tables.
func WithLocale(l *kinds.Locale) Option {
	return func(e *Engine) {
		e.locale = l
	}
}

// WithRegion sets the default phone region.
func WithRegion(region string) Option {
	return func(e *Engine) {
		e.region = region
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		region: kinds.DefaultRegion,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locale == nil {
		e.locale = kinds.DefaultLocale()
	}
	if e.registry == nil {
		e.registry = kinds.NewDefaultRegistry(e.locale)
	}
	e.composite = extract.NewComposite(e.locale)
	e.mixed = extract.NewMixed(e.registry, e.composite,
		extract.WithRegion(e.region),
		extract.WithLogger(e.logger),
	)
	return e
}

// Composite returns the composite extractor shared with out-of-band mergers.
func (e *Engine) Composite() *extract.Composite { return e.composite }

// Locale returns the heuristics data tables.
func (e *Engine) Locale() *kinds.Locale { return e.locale }

// Start returns the initial state for a plan.
func (e *Engine) Start(ctx context.Context, sessionID string, plan domain.Plan) *domain.State {
	state := domain.NewState(sessionID, plan)
	e.logger.Debug("session started", "session_id", sessionID, "mode", state.Mode, "target", state.Target())
	e.emitTransition(ctx, nil, state)
	if state.Terminal() {
		e.emitComplete(ctx, state)
	}
	return state
}

// Advance applies one user utterance. The input state is never modified; the returned state
// is a fresh value. Malformed or empty input is absorbed as "no progress".
func (e *Engine) Advance(ctx context.Context, state *domain.State, utterance string) (*domain.State, error) {
	if state == nil {
		return nil, domain.ErrNilState
	}

	input := strings.TrimSpace(utterance)
	next := state.Snapshot()
	if input != "" {
		next.Transcript = append(next.Transcript, domain.Turn{
			Speaker: domain.SpeakerUser,
			Text:    input,
			NodeID:  state.Target(),
			Mode:    state.Mode,
		})
	}

	var progressed bool
	switch state.Mode {
	case domain.ModeCollectingMain:
		progressed = e.collectMain(ctx, next, input)
	case domain.ModeCollectingSub:
		progressed = e.collectSub(ctx, next, input)
	case domain.ModeConfirmingMain:
		progressed = e.confirmMain(next, input)
	case domain.ModeNotConfirmed:
		progressed = e.disambiguate(next, input)
	case domain.ModeSuccessMain:
		e.nextMain(next)
		progressed = true
	case domain.ModeCompleted:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, state.Mode)
	}

	e.escalate(state, next, input, progressed)

	e.logger.Debug("advance",
		"session_id", state.SessionID,
		"from", state.Mode,
		"to", next.Mode,
		"target", next.Target(),
		"no_input", next.NoInput,
		"no_match", next.NoMatch,
	)

	if next.Mode != state.Mode || next.Target() != state.Target() {
		e.emitTransition(ctx, state, next)
	}
	if next.Terminal() && !state.Terminal() {
		e.emitComplete(ctx, next)
	}
	return next, nil
}

// escalate maintains the no-input / no-match counters. They reset whenever the conversation
// moves to a new mode or target, or the turn made progress.
func (e *Engine) escalate(prev, next *domain.State, input string, progressed bool) {
	switch {
	case progressed || next.Mode != prev.Mode || next.Target() != prev.Target():
		next.NoInput, next.NoMatch = 0, 0
	case input == "":
		next.NoInput = min(prev.NoInput+1, domain.MaxEscalation)
		next.NoMatch = 0
	default:
		next.NoMatch = min(prev.NoMatch+1, domain.MaxEscalation)
		next.NoInput = 0
	}
}
