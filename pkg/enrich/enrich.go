// Package enrich merges best-effort background lookups (such as address parsing) into a
// conversation. Responses may arrive late, out of order or never; merging only fills fields
// that are still empty, so correctness never depends on them.
package enrich

import (
	"context"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/extract"
)

// Request carries the free text to enrich.
type Request struct {
	SessionID string `json:"session_id"`
	FieldID   string `json:"field_id"`
	Text      string `json:"text"`
}

// Response carries a structured field bag keyed by part name (street, number, city, postal,
// country), or Found=false when the service recognised nothing.
type Response struct {
	Found  bool              `json:"found"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Enricher performs a lookup.
type Enricher interface {
	Enrich(ctx context.Context, req Request) (Response, error)
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ctx context.Context, req Request) (Response, error)

// Enrich implements Enricher.
func (f EnricherFunc) Enrich(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Merge fills the empty subs of mainID from resp and returns the new state with the ids it
// wrote. A confirmed main is never touched. When the merge saturates the main, its value is
// composed. The cursor and mode are left alone.
func Merge(c *extract.Composite, s *domain.State, mainID string, resp Response) (*domain.State, []string) {
	if s == nil || !resp.Found || len(resp.Fields) == 0 {
		return s, nil
	}
	main, ok := s.Plan.Node(mainID)
	if !ok || !main.IsMain() || s.Memory.Confirmed(mainID) {
		return s, nil
	}

	next := s.Snapshot()
	var filled []string

	subs := next.Plan.Subs(main)
	if len(subs) == 0 {
		if next.Memory.Present(main.ID) {
			return s, nil
		}
		parts := make(map[domain.Part]string, len(resp.Fields))
		for k, v := range resp.Fields {
			parts[domain.Part(k)] = v
		}
		v, ok := c.Compose(main.Kind, parts)
		if !ok {
			return s, nil
		}
		next.Memory = next.Memory.With(main.ID, v)
		return next, []string{main.ID}
	}

	for _, sub := range subs {
		if next.Memory.Present(sub.ID) {
			continue
		}
		part, bound := extract.PartForLabel(c.Locale(), main.Kind, sub)
		if !bound {
			continue
		}
		if v := resp.Fields[string(part)]; v != "" {
			next.Memory = next.Memory.With(sub.ID, domain.TextValue(sub.Kind, v))
			filled = append(filled, sub.ID)
		}
	}
	if len(filled) == 0 {
		return s, nil
	}

	if !next.Memory.Present(main.ID) && domain.IsSaturated(main, next.Memory) {
		if v, ok := c.ComposeMain(next.Plan, main, next.Memory); ok {
			next.Memory = next.Memory.With(main.ID, v)
			filled = append(filled, main.ID)
		}
	}
	return next, filled
}
