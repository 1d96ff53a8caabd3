package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/ports"
)

// Mask replaces personal data at rest.
const Mask = "***"

// DefaultPIIKinds are masked regardless of field id.
var DefaultPIIKinds = []domain.Kind{domain.KindEmail, domain.KindPhone}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
	kinds    map[domain.Kind]bool
}

// NewPIIMiddleware creates a middleware that masks memory slots holding a PII kind or whose
// field id matches one of the patterns. User turns quoting a masked value are redacted too.
// Masking is one-way: use it in front of audit or archival stores.
func NewPIIMiddleware(patternStrings []string, kinds ...domain.Kind) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	if len(kinds) == 0 {
		kinds = DefaultPIIKinds
	}
	set := make(map[domain.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns, kinds: set}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if state == nil {
		return domain.ErrNilState
	}
	// Snapshot so the engine's in-memory state keeps the real values.
	cloned := state.Snapshot()

	var secrets []string
	for id, slot := range cloned.Memory {
		if !m.sensitive(id, slot.Value.Kind) {
			continue
		}
		if s := slot.Value.String(); s != "" {
			secrets = append(secrets, s)
		}
		cloned.Memory[id] = domain.Slot{
			Value:     domain.TextValue(slot.Value.Kind, Mask),
			Confirmed: slot.Confirmed,
		}
	}
	for i, turn := range cloned.Transcript {
		cloned.Transcript[i].Text = redact(turn.Text, secrets)
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) sensitive(id string, kind domain.Kind) bool {
	if m.kinds[kind] {
		return true
	}
	for _, p := range m.patterns {
		if p.MatchString(id) {
			return true
		}
	}
	return false
}

func redact(text string, secrets []string) string {
	for _, s := range secrets {
		text = strings.ReplaceAll(text, s, Mask)
	}
	return text
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
