package slotfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/slotfill/internal/logging"
	"github.com/aretw0/slotfill/internal/runtime"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/extract"
	"github.com/aretw0/slotfill/pkg/kinds"
	"github.com/aretw0/slotfill/pkg/messages"
	"github.com/aretw0/slotfill/pkg/schema"
)

// ErrNilTemplate is returned by Init when no template is given.
var ErrNilTemplate = errors.New("nil template")

// Engine is the high-level entry point for the slotfill library.
// It wraps the internal runtime and provides a simplified API for consumers.
// One Engine serves any number of templates and sessions; it holds no conversation state.
type Engine struct {
	runtime  *runtime.Engine
	registry *kinds.Registry
	locale   *kinds.Locale
	region   string
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	resolver *messages.Resolver
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the built-in kind detectors.
func WithRegistry(r *kinds.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLocale sets the month names, stop-words and confirmation phrases the heuristics use.
func WithLocale(l *kinds.Locale) Option {
	return func(e *Engine) {
		e.locale = l
	}
}

// WithRegion sets the default country for phone normalisation (default "IT").
func WithRegion(region string) Option {
	return func(e *Engine) {
		e.region = region
	}
}

// WithMessages sets the translation table and its fallback used by Prompt.
func WithMessages(table, fallback messages.Table) Option {
	return func(e *Engine) {
		e.resolver = messages.NewResolver(table, fallback)
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{region: kinds.DefaultRegion}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.locale == nil {
		eng.locale = kinds.DefaultLocale()
	}
	if eng.registry == nil {
		eng.registry = kinds.NewDefaultRegistry(eng.locale)
	}
	if eng.resolver == nil {
		eng.resolver = messages.NewResolver(nil, nil)
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLogger(eng.logger),
		runtime.WithRegistry(eng.registry),
		runtime.WithLocale(eng.locale),
		runtime.WithRegion(eng.region),
		runtime.WithLifecycleHooks(eng.hooks),
	)
	return eng
}

// Init builds the plan of tpl and returns the initial state of a new conversation.
// Broken cross-references between nodes are a hard error here even though the plan builder
// would skip them.
func (e *Engine) Init(ctx context.Context, sessionID string, tpl *schema.Template) (*domain.State, error) {
	if tpl == nil {
		return nil, ErrNilTemplate
	}
	if err := tpl.Integrity(); err != nil {
		return nil, fmt.Errorf("template %q: %w", tpl.ID, err)
	}
	state := e.runtime.Start(ctx, sessionID, tpl.Plan())
	state.TemplateID = tpl.ID
	return state, nil
}

// Advance applies one user utterance and returns the next state. The given state is not
// modified.
func (e *Engine) Advance(ctx context.Context, state *domain.State, utterance string) (*domain.State, error) {
	return e.runtime.Advance(ctx, state, utterance)
}

// Prompt renders the bot prompt for state. Keys resolve against the engine table, then the
// template's own messages, then the engine fallback table.
func (e *Engine) Prompt(tpl *schema.Template, state *domain.State) messages.Prompt {
	r := e.resolver
	if tpl != nil {
		r = r.WithDefaults(tpl.Messages)
	}
	return r.PromptFor(state)
}

// Composite returns the composite extractor, used to recompose values merged out of band.
func (e *Engine) Composite() *extract.Composite {
	return e.runtime.Composite()
}

// Locale returns the heuristics data tables.
func (e *Engine) Locale() *kinds.Locale {
	return e.locale
}
