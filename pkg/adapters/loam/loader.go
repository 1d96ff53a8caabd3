package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/schema"
)

// TemplateMetadata is the document shape of a template stored in a Loam repository.
// YAML, JSON and Markdown front matter all decode into it.
type TemplateMetadata struct {
	ID       string           `json:"id" mapstructure:"id"`
	Version  string           `json:"version" mapstructure:"version"`
	Label    string           `json:"label" mapstructure:"label"`
	Nodes    []map[string]any `json:"nodes" mapstructure:"nodes"`
	Messages map[string]any   `json:"messages,omitempty" mapstructure:"messages"`
}

// Loader adapts the Loam library to the ports.TemplateLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initialises a read-only Loam repository rooted at dir and wraps it.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template dir: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open template repository %s: %w", absPath, err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// Get implements ports.TemplateLoader. The document is validated and compiled on every call,
// so edits on disk are picked up without a restart.
func (l *Loader) Get(ctx context.Context, id string) (*schema.Template, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: loam get failed for %s: %w", domain.ErrTemplateNotFound, id, err)
	}

	tpl, err := schema.FromRaw(toRaw(doc.Data))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}

	rawID := doc.Data.ID
	if rawID == "" {
		rawID = doc.ID
	}
	tpl.ID = trimExtension(rawID)
	return tpl, nil
}

func toRaw(meta TemplateMetadata) map[string]any {
	nodes := make([]any, 0, len(meta.Nodes))
	for _, n := range meta.Nodes {
		nodes = append(nodes, n)
	}
	raw := map[string]any{
		"version": meta.Version,
		"nodes":   nodes,
	}
	if meta.ID != "" {
		raw["id"] = meta.ID
	}
	if meta.Label != "" {
		raw["label"] = meta.Label
	}
	if len(meta.Messages) > 0 {
		raw["messages"] = meta.Messages
	}
	return raw
}

// List implements ports.TemplateLoader.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
