package ports

import (
	"context"

	"github.com/aretw0/slotfill/pkg/schema"
)

// TemplateLoader defines how adapters retrieve conversation templates.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type TemplateLoader interface {
	// Get returns the validated template with the given id.
	// Returns domain.ErrTemplateNotFound when no such template exists.
	Get(ctx context.Context, id string) (*schema.Template, error)

	// List returns the ids of every available template.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload in dev mode.
type Watchable interface {
	// Watch returns a channel that receives the id of each changed template.
	Watch(ctx context.Context) (<-chan string, error)
}
