package extract

import (
	"log/slog"
	"strings"

	"github.com/aretw0/slotfill/internal/logging"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/kinds"
)

// Fill records one field written by mixed-initiative extraction.
type Fill struct {
	FieldID string
	Kind    domain.Kind
	Value   domain.Value
}

// Result is the outcome of ExtractOrdered.
type Result struct {
	Memory   domain.Memory
	Residual string
	Filled   []Fill
}

// Mixed extracts values for any pending field from a single utterance.
type Mixed struct {
	registry  *kinds.Registry
	composite *Composite
	region    string
	logger    *slog.Logger
}

// MixedOption configures a Mixed extractor.
type MixedOption func(*Mixed)

// WithRegion sets the default country used to normalise phone numbers.
func WithRegion(region string) MixedOption {
	return func(m *Mixed) {
		m.region = region
	}
}

// WithLogger sets the logger used for extraction traces.
func WithLogger(logger *slog.Logger) MixedOption {
	return func(m *Mixed) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMixed creates a mixed-initiative extractor over the given detectors.
func NewMixed(registry *kinds.Registry, composite *Composite, opts ...MixedOption) *Mixed {
	if composite == nil {
		composite = NewComposite(nil)
	}
	if registry == nil {
		registry = kinds.NewDefaultRegistry(composite.Locale())
	}
	m := &Mixed{
		registry:  registry,
		composite: composite,
		region:    kinds.DefaultRegion,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// KindOrder returns the order in which kinds are tried. A constrained primary goes first,
// followed by the other constrained kinds; a free-form primary follows the constrained kinds.
// The remaining free-form kinds come next and name is always last.
func KindOrder(primary domain.Kind, planKinds []domain.Kind) []domain.Kind {
	inPlan := make(map[domain.Kind]bool, len(planKinds))
	for _, k := range planKinds {
		inPlan[k] = true
	}

	var order []domain.Kind
	seen := make(map[domain.Kind]bool)
	add := func(k domain.Kind) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		order = append(order, k)
	}

	if primary.IsConstrained() {
		add(primary)
	}
	for _, k := range domain.ConstrainedKinds() {
		if inPlan[k] {
			add(k)
		}
	}
	add(primary)
	for _, k := range planKinds {
		if k != domain.KindName {
			add(k)
		}
	}

	if seen[domain.KindName] || inPlan[domain.KindName] {
		out := order[:0]
		for _, k := range order {
			if k != domain.KindName {
				out = append(out, k)
			}
		}
		order = append(out, domain.KindName)
	}
	return order
}

// ExtractOrdered scans utterance for values of every kind pending in the state's plan.
// Each match fills the first unfilled field of its kind in plan order and its span is removed
// from the residual. The scan repeats until a full pass changes nothing.
func (m *Mixed) ExtractOrdered(state *domain.State, utterance string, primary domain.Kind) Result {
	res := Result{Memory: state.Memory.Clone(), Residual: utterance}
	if strings.TrimSpace(utterance) == "" {
		return res
	}

	order := KindOrder(primary, state.Plan.Kinds())
	for {
		before := res.Residual
		for _, kind := range order {
			det, ok := m.registry.Lookup(kind)
			if !ok {
				continue
			}
			for {
				match, found := det.Detect(res.Residual)
				if !found || match.Span.Len() <= 0 {
					break
				}
				fills := m.write(state.Plan, &res.Memory, kind, match.Value)
				if len(fills) == 0 {
					break
				}
				res.Filled = append(res.Filled, fills...)
				res.Residual = SubtractSpan(res.Residual, match.Span)
				m.logger.Debug("mixed extraction", "kind", kind, "fields", len(fills), "residual", res.Residual)
			}
		}
		if res.Residual == before {
			return res
		}
	}
}

// write stores a detected value into the first eligible field of its kind.
func (m *Mixed) write(plan domain.Plan, mem *domain.Memory, kind domain.Kind, v domain.Value) []Fill {
	var (
		phone kinds.Phone
		valid bool
	)
	if kind == domain.KindPhone {
		p, err := kinds.NormalizePhone(v.Text, m.region)
		if err != nil {
			p = kinds.Phone{International: strings.Join(strings.Fields(v.Text), " ")}
		}
		phone, valid = p, err == nil
		v = domain.TextValue(domain.KindPhone, p.International)
	}

	for _, id := range plan.Order {
		node, ok := plan.Node(id)
		if !ok || node.Kind != kind {
			continue
		}

		if kind == domain.KindPhone {
			if fills := m.writePhone(plan, mem, node, phone, valid, v); fills != nil {
				return fills
			}
			continue
		}

		if node.IsMain() && len(plan.Subs(node)) > 0 {
			if fills := m.writeComposite(plan, mem, node, v); fills != nil {
				return fills
			}
			continue
		}

		if mem.Present(node.ID) || mem.Confirmed(node.ID) {
			continue
		}
		*mem = mem.With(node.ID, v)
		return []Fill{{FieldID: node.ID, Kind: kind, Value: v}}
	}
	return nil
}

// writeComposite distributes v over the bound subs of main that are still empty and composes
// the main once it is saturated.
func (m *Mixed) writeComposite(plan domain.Plan, mem *domain.Memory, main domain.Node, v domain.Value) []Fill {
	if mem.Present(main.ID) || mem.Confirmed(main.ID) {
		return nil
	}
	parts := partsOfValue(v)

	var fills []Fill
	for _, sub := range plan.Subs(main) {
		if mem.Present(sub.ID) {
			continue
		}
		p, bound := PartForLabel(m.composite.Locale(), main.Kind, sub)
		if !bound || parts[p] == "" {
			continue
		}
		sv := domain.TextValue(sub.Kind, parts[p])
		*mem = mem.With(sub.ID, sv)
		fills = append(fills, Fill{FieldID: sub.ID, Kind: sub.Kind, Value: sv})
	}
	if len(fills) == 0 {
		return nil
	}

	if domain.IsSaturated(main, *mem) {
		if composed, ok := m.composite.ComposeMain(plan, main, *mem); ok {
			*mem = mem.With(main.ID, composed)
			fills = append(fills, Fill{FieldID: main.ID, Kind: main.Kind, Value: composed})
		}
	}
	return fills
}

// writePhone fills an empty phone field. A number that normalises also replaces a value that
// does not read as a phone number. Calling code and national number go to the prefix and
// number subs when declared.
func (m *Mixed) writePhone(plan domain.Plan, mem *domain.Memory, node domain.Node, phone kinds.Phone, valid bool, v domain.Value) []Fill {
	if mem.Confirmed(node.ID) {
		return nil
	}
	if cur, ok := mem.Get(node.ID); ok && (!valid || kinds.IsPhoneShaped(cur.String())) {
		return nil
	}

	*mem = mem.With(node.ID, v)
	fills := []Fill{{FieldID: node.ID, Kind: domain.KindPhone, Value: v}}

	if !node.IsMain() {
		return fills
	}
	parts := map[domain.Part]string{domain.PartPrefix: phone.Prefix, domain.PartNumber: phone.National}
	for _, sub := range plan.Subs(node) {
		p, bound := PartForLabel(m.composite.Locale(), domain.KindPhone, sub)
		if !bound || parts[p] == "" || mem.Confirmed(sub.ID) {
			continue
		}
		sv := domain.TextValue(sub.Kind, parts[p])
		*mem = mem.With(sub.ID, sv)
		fills = append(fills, Fill{FieldID: sub.ID, Kind: sub.Kind, Value: sv})
	}
	return fills
}
