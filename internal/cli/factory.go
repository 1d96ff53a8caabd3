package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/internal/config"
	"github.com/aretw0/slotfill/pkg/adapters/file"
	"github.com/aretw0/slotfill/pkg/adapters/loam"
	"github.com/aretw0/slotfill/pkg/adapters/memory"
	"github.com/aretw0/slotfill/pkg/adapters/process"
	"github.com/aretw0/slotfill/pkg/adapters/redis"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/enrich"
	"github.com/aretw0/slotfill/pkg/messages"
	"github.com/aretw0/slotfill/pkg/observability"
	"github.com/aretw0/slotfill/pkg/persistence/middleware"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/schema"
	"github.com/aretw0/slotfill/pkg/session"
)

// NewEngine builds an engine with the configured region and message table. Lifecycle events
// feed metrics when given, and are logged when the logger is at debug level.
func NewEngine(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*slotfill.Engine, error) {
	opts := []slotfill.Option{
		slotfill.WithLogger(logger),
		slotfill.WithRegion(cfg.Region),
	}

	if cfg.MessagesFile != "" {
		table, err := messages.LoadTable(cfg.MessagesFile)
		if err != nil {
			return nil, fmt.Errorf("error loading messages: %w", err)
		}
		opts = append(opts, slotfill.WithMessages(table, nil))
	}

	var hooks []domain.LifecycleHooks
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	if metrics != nil {
		hooks = append(hooks, metrics.Hooks())
	}
	if len(hooks) > 0 {
		opts = append(opts, slotfill.WithLifecycleHooks(observability.Chain(hooks...)))
	}

	return slotfill.New(opts...), nil
}

// NewStore returns the redis store when an address is configured, the file store when a
// sessions directory is, and the in-memory store otherwise, wrapped with PII masking and encryption as configured. The redis locker is
// returned alongside the redis store.
func NewStore(cfg *config.Config) (ports.StateStore, ports.DistributedLocker) {
	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	if cfg.RedisAddr != "" {
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SessionTTL))
		store = rs
		locker = redis.NewLocker(rs.Client(), "slotfill:")
	} else if cfg.SessionsDir != "" {
		store = file.New(cfg.SessionsDir)
	} else {
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if cfg.PIIMasking {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.PIIPatterns))
	}
	if cfg.EncryptionKey != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    cfg.EncryptionKey,
			FallbackKeys: cfg.FallbackKeys,
		}))
	}
	return middleware.Wrap(store, mws...), locker
}

// NewSessions builds the session manager over the configured store.
func NewSessions(cfg *config.Config, logger *slog.Logger) *session.Manager {
	store, locker := NewStore(cfg)
	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(store, opts...)
}

// NewDispatcher returns nil when neither an enrichment endpoint nor a command is configured.
func NewDispatcher(cfg *config.Config, logger *slog.Logger) *enrich.Dispatcher {
	var enricher enrich.Enricher
	switch {
	case cfg.EnrichURL != "":
		enricher = enrich.NewClient(cfg.EnrichURL)
	case process.Parse(cfg.EnrichCommand) != nil:
		enricher = process.Parse(cfg.EnrichCommand, process.WithBaseDir(cfg.TemplatesDir))
	default:
		return nil
	}
	return enrich.NewDispatcher(
		enricher,
		enrich.DefaultLimit,
		enrich.WithTimeout(cfg.EnrichTimeout),
		enrich.WithLogger(logger),
	)
}

// OpenTemplates opens the template directory as a catalog.
func OpenTemplates(dir string) (*loam.Loader, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("template directory %q not found", dir)
	}
	return loam.Open(dir)
}

// ResolveTemplate loads ref as a file when it exists, otherwise as an id in dir.
func ResolveTemplate(ctx context.Context, ref, dir string) (*schema.Template, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return schema.Load(ref)
	}
	loader, err := OpenTemplates(dir)
	if err != nil {
		return nil, err
	}
	return loader.Get(ctx, ref)
}
