package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/schema"
)

// Loader implements ports.TemplateLoader using an in-memory map.
type Loader struct {
	mu        sync.RWMutex
	templates map[string]*schema.Template
}

// NewLoader creates a loader serving the given templates, keyed by their id.
func NewLoader(templates ...*schema.Template) (*Loader, error) {
	l := &Loader{templates: make(map[string]*schema.Template, len(templates))}
	for _, tpl := range templates {
		if err := l.Put(tpl); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewFromDocuments compiles raw YAML or JSON documents keyed by id.
// This improves DX for tests and embedded catalogs.
func NewFromDocuments(docs map[string]string) (*Loader, error) {
	l := &Loader{templates: make(map[string]*schema.Template, len(docs))}
	for id, doc := range docs {
		tpl, err := schema.Compile([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		if tpl.ID == "" {
			tpl.ID = id
		}
		if err := l.Put(tpl); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put adds or replaces a template.
func (l *Loader) Put(tpl *schema.Template) error {
	if tpl == nil || tpl.ID == "" {
		return fmt.Errorf("template missing ID")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[tpl.ID] = tpl
	return nil
}

// Get implements ports.TemplateLoader.
func (l *Loader) Get(ctx context.Context, id string) (*schema.Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tpl, ok := l.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	return tpl, nil
}

// List implements ports.TemplateLoader.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.templates))
	for k := range l.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
