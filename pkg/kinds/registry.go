package kinds

import (
	"sort"
	"sync"

	"github.com/aretw0/slotfill/pkg/domain"
)

// Span is a half-open byte range [Start, End) of the text a detector consumed.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Match is a detected value together with the span it was read from.
type Match struct {
	Value domain.Value
	Span  Span
}

// Detector recognises a value of one kind inside free text.
// Detectors are pure: the absence of a match is reported with ok=false, never with an error.
type Detector interface {
	Detect(text string) (m Match, ok bool)
}

// DetectorFunc adapts a plain function to the Detector interface.
type DetectorFunc func(text string) (Match, bool)

// Detect implements Detector.
func (f DetectorFunc) Detect(text string) (Match, bool) { return f(text) }

// Registry manages the available detectors.
type Registry struct {
	mu        sync.RWMutex
	detectors map[domain.Kind]Detector
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[domain.Kind]Detector),
	}
}

// NewDefaultRegistry creates a registry holding the built-in date, email, phone and name
// detectors. A nil locale selects DefaultLocale.
func NewDefaultRegistry(loc *Locale) *Registry {
	if loc == nil {
		loc = DefaultLocale()
	}
	r := NewRegistry()
	r.Register(domain.KindDate, DateDetector())
	r.Register(domain.KindEmail, EmailDetector())
	r.Register(domain.KindPhone, PhoneDetector())
	r.Register(domain.KindName, NameDetector(loc))
	return r
}

// Register adds a detector to the registry.
// If a detector for the same kind exists, it is overwritten.
func (r *Registry) Register(kind domain.Kind, d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors[kind] = d
}

// Lookup returns the detector registered for kind.
func (r *Registry) Lookup(kind domain.Kind) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[kind]
	return d, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []domain.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Kind, 0, len(r.detectors))
	for k := range r.detectors {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
