package enrich

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/slotfill/internal/logging"
)

// DefaultLimit caps the number of in-flight enrichment calls.
const DefaultLimit = 32

// Dispatcher runs enrichment calls in the background. Calls outlive the request context that
// triggered them but are bounded by their own timeout; when the in-flight limit is reached new
// calls are dropped.
type Dispatcher struct {
	enricher Enricher
	timeout  time.Duration
	logger   *slog.Logger
	group    errgroup.Group
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		if logger != nil {
			disp.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher over e with at most limit concurrent calls.
func NewDispatcher(e Enricher, limit int, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		enricher: e,
		timeout:  DefaultTimeout,
		logger:   logging.NewNop(),
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	d.group.SetLimit(limit)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts an enrichment call and hands a found response to apply. It reports whether
// the call was started.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, apply func(context.Context, Response)) bool {
	base := context.WithoutCancel(ctx)
	started := d.group.TryGo(func() error {
		callCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		resp, err := d.enricher.Enrich(callCtx, req)
		if err != nil {
			d.logger.Debug("enrichment failed", "session_id", req.SessionID, "field", req.FieldID, "err", err)
			return nil
		}
		if !resp.Found {
			return nil
		}
		apply(callCtx, resp)
		return nil
	})
	if !started {
		d.logger.Warn("enrichment dropped", "session_id", req.SessionID, "field", req.FieldID)
	}
	return started
}

// Wait blocks until every started call has returned.
func (d *Dispatcher) Wait() {
	_ = d.group.Wait()
}
