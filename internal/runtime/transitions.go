package runtime

import (
	"context"
	"strings"
	"unicode"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/extract"
)

// collectMain runs mixed-initiative extraction for the whole plan, then decomposes the
// residual for the current main.
func (e *Engine) collectMain(ctx context.Context, s *domain.State, input string) bool {
	main, ok := s.CurrentMain()
	if !ok || input == "" {
		return false
	}

	res := e.mixed.ExtractOrdered(s, input, main.Kind)
	s.Memory = res.Memory
	for _, f := range res.Filled {
		e.emitExtract(ctx, s.SessionID, f.FieldID, f.Kind, domain.SourceMixed)
	}
	progressed := len(res.Filled) > 0
	subs := s.Plan.Subs(main)

	if e.runComposite(s, main, res.Residual, progressed) {
		outcome := e.composite.Apply(main.Kind, res.Residual)
		if len(subs) > 0 {
			for _, sub := range subs {
				if s.Memory.Present(sub.ID) {
					continue
				}
				part, bound := e.partOf(main, sub)
				if !bound || outcome.SubValues[part] == "" {
					continue
				}
				s.Memory = s.Memory.With(sub.ID, domain.TextValue(sub.Kind, outcome.SubValues[part]))
				e.emitExtract(ctx, s.SessionID, sub.ID, sub.Kind, domain.SourceComposite)
				progressed = true
			}
			// Only optional subs: the answer stands for the main as a whole.
			if !domain.AnySubPresent(s.Plan, main, s.Memory) &&
				len(domain.MissingRequiredSubs(s.Plan, main, s.Memory)) == 0 &&
				!s.Memory.Present(main.ID) && !outcome.Value.IsZero() {
				s.Memory = s.Memory.With(main.ID, outcome.Value)
				e.emitExtract(ctx, s.SessionID, main.ID, main.Kind, domain.SourceComposite)
				progressed = true
			}
		} else if !s.Memory.Present(main.ID) && !outcome.Value.IsZero() {
			s.Memory = s.Memory.With(main.ID, outcome.Value)
			e.emitExtract(ctx, s.SessionID, main.ID, main.Kind, domain.SourceComposite)
			progressed = true
		}
	}

	e.evaluate(s, main)

	// Subs that no extractor can bind are asked one at a time.
	if s.Mode == domain.ModeCollectingMain && len(subs) > 0 && !e.anyBound(main, subs) {
		if missing := domain.MissingRequiredSubs(s.Plan, main, s.Memory); len(missing) > 0 {
			s.Mode = domain.ModeCollectingSub
			s.CurrentSubID = missing[0]
			progressed = true
		}
	}
	return progressed
}

func (e *Engine) anyBound(main domain.Node, subs []domain.Node) bool {
	for _, sub := range subs {
		if _, bound := e.partOf(main, sub); bound {
			return true
		}
	}
	return false
}

// runComposite decides whether the residual is worth decomposing. Sub-less constrained fields
// rely on their detector alone, and leftovers made only of function words are ignored once
// another field consumed part of the utterance.
func (e *Engine) runComposite(s *domain.State, main domain.Node, residual string, extracted bool) bool {
	if domain.IsSaturated(main, s.Memory) {
		return false
	}
	if len(main.Subs) == 0 && main.Kind.IsConstrained() {
		if _, ok := e.registry.Lookup(main.Kind); ok {
			return false
		}
	}
	if extracted && !e.meaningful(residual) {
		return false
	}
	return strings.TrimSpace(residual) != ""
}

func (e *Engine) meaningful(text string) bool {
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		if !e.locale.IsStopWord(w) {
			return true
		}
	}
	return false
}

// collectSub stores the answer verbatim, after dropping correction lead-ins.
func (e *Engine) collectSub(ctx context.Context, s *domain.State, input string) bool {
	main, okMain := s.CurrentMain()
	sub, okSub := s.CurrentSub()
	if !okMain || !okSub {
		return false
	}

	text := e.locale.StripCorrection(input)
	if text == "" {
		return false
	}

	s.Memory = s.Memory.With(sub.ID, domain.TextValue(sub.Kind, text))
	e.emitExtract(ctx, s.SessionID, sub.ID, sub.Kind, domain.SourceSub)
	e.evaluate(s, main)
	return true
}

// confirmMain handles the yes/no answer to a confirmation prompt. Anything else leaves the
// state untouched.
func (e *Engine) confirmMain(s *domain.State, input string) bool {
	main, ok := s.CurrentMain()
	if !ok {
		return false
	}

	switch {
	case e.locale.IsAffirmative(input):
		ids := append([]string{main.ID}, main.Subs...)
		s.Memory = s.Memory.Confirm(ids...)
		s.Mode = domain.ModeSuccessMain
		s.CurrentSubID = ""
		s.NotConfirmedCounter = 0
		return true
	case e.locale.IsNegative(input):
		if main.Steps.NotConfirmed != nil {
			s.Mode = domain.ModeNotConfirmed
			s.NotConfirmedCounter = 1
			return true
		}
		e.recover(s, main)
		return true
	}
	return false
}

// disambiguate handles NotConfirmed: "choose:<subId>" jumps to that sub, anything else bumps
// the counter and, once it is already at the cap, forces recovery.
func (e *Engine) disambiguate(s *domain.State, input string) bool {
	main, ok := s.CurrentMain()
	if !ok {
		return false
	}

	if subID, chosen := parseChoice(input); chosen && owns(main, subID) {
		if _, resolvable := s.Plan.Node(subID); resolvable {
			s.Memory = s.Memory.Without(main.ID)
			s.Mode = domain.ModeCollectingSub
			s.CurrentSubID = subID
			s.NotConfirmedCounter = 0
			return true
		}
	}

	if s.NotConfirmedCounter >= domain.MaxEscalation {
		e.recover(s, main)
		return true
	}
	s.NotConfirmedCounter++
	return false
}

// recover re-opens a rejected main: the first missing required sub, else the first declared
// sub. A main without subs is cleared and asked again.
func (e *Engine) recover(s *domain.State, main domain.Node) {
	s.NotConfirmedCounter = 0
	s.Memory = s.Memory.Without(main.ID)

	subs := s.Plan.Subs(main)
	if len(subs) == 0 {
		s.Mode = domain.ModeCollectingMain
		s.CurrentSubID = ""
		return
	}

	target := subs[0].ID
	if missing := domain.MissingRequiredSubs(s.Plan, main, s.Memory); len(missing) > 0 {
		target = missing[0]
	}
	s.Mode = domain.ModeCollectingSub
	s.CurrentSubID = target
}

// nextMain moves the cursor to the following main and evaluates what it still needs.
func (e *Engine) nextMain(s *domain.State) {
	s.CurrentSubID = ""
	s.NotConfirmedCounter = 0

	idx := s.Plan.NextMain(s.CurrentMainIndex)
	if idx < 0 {
		s.Mode = domain.ModeCompleted
		s.CurrentMainIndex = len(s.Plan.Order)
		return
	}
	s.CurrentMainIndex = idx
	main, _ := s.CurrentMain()
	e.evaluate(s, main)
}

// evaluate picks the mode for main from what memory holds: nothing yet keeps collecting the
// main, a partial answer asks the first missing required sub, a full answer is composed and
// confirmed. A main whose subs are all optional may be confirmed on its own value.
func (e *Engine) evaluate(s *domain.State, main domain.Node) {
	subs := s.Plan.Subs(main)

	if len(subs) == 0 {
		s.CurrentSubID = ""
		if s.Memory.Present(main.ID) {
			s.Mode = domain.ModeConfirmingMain
		} else {
			s.Mode = domain.ModeCollectingMain
		}
		return
	}

	if !domain.AnySubPresent(s.Plan, main, s.Memory) {
		s.CurrentSubID = ""
		s.Mode = domain.ModeCollectingMain
		if len(domain.MissingRequiredSubs(s.Plan, main, s.Memory)) == 0 && s.Memory.Present(main.ID) {
			s.Mode = domain.ModeConfirmingMain
		}
		return
	}

	if missing := domain.MissingRequiredSubs(s.Plan, main, s.Memory); len(missing) > 0 {
		s.Memory = s.Memory.Without(main.ID)
		s.Mode = domain.ModeCollectingSub
		s.CurrentSubID = missing[0]
		return
	}

	if v, ok := e.composite.ComposeMain(s.Plan, main, s.Memory); ok {
		if cur, present := s.Memory.Get(main.ID); !present || cur.String() != v.String() {
			s.Memory = s.Memory.With(main.ID, v)
		}
	}
	s.Mode = domain.ModeConfirmingMain
	s.CurrentSubID = ""
}

func (e *Engine) partOf(main, sub domain.Node) (domain.Part, bool) {
	return extract.PartForLabel(e.locale, main.Kind, sub)
}

func parseChoice(input string) (string, bool) {
	if len(input) < len(ChoosePrefix) || !strings.EqualFold(input[:len(ChoosePrefix)], ChoosePrefix) {
		return "", false
	}
	id := strings.TrimSpace(input[len(ChoosePrefix):])
	return id, id != ""
}

func owns(main domain.Node, subID string) bool {
	for _, id := range main.Subs {
		if id == subID {
			return true
		}
	}
	return false
}
