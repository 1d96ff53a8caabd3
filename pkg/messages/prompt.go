package messages

import (
	"strings"

	"github.com/aretw0/slotfill/pkg/domain"
)

// Step names the conversational step a prompt belongs to.
type Step string

const (
	StepAsk          Step = "ask"
	StepConfirm      Step = "confirm"
	StepNotConfirmed Step = "notConfirmed"
	StepSuccess      Step = "success"
	StepCompleted    Step = "completed"
)

// CompletedKey is the text key rendered once every field is collected.
const CompletedKey = "completed"

// Default texts used when no table resolves a key.
const (
	DefaultAsk          = "Please tell me your {{label}}."
	DefaultAskSub       = "What is the {{label}} of your {{main}}?"
	DefaultNoInput      = "Sorry, I didn't hear anything. {{prompt}}"
	DefaultNoMatch      = "Sorry, I didn't understand. {{prompt}}"
	DefaultConfirm      = "Is {{value}} correct?"
	DefaultNotConfirmed = "Which part of the {{label}} is wrong? {{options}}"
	DefaultSuccess      = "Got it."
	DefaultCompleted    = "Thank you, that's everything."
)

// Prompt is the bot turn a state calls for.
type Prompt struct {
	Key    string `json:"key,omitempty"`
	Text   string `json:"text"`
	NodeID string `json:"node_id,omitempty"`
	Step   Step   `json:"step"`
}

// Turn converts the prompt into a transcript entry.
func (p Prompt) Turn(mode domain.Mode) domain.Turn {
	return domain.Turn{Speaker: domain.SpeakerBot, Text: p.Text, NodeID: p.NodeID, Mode: mode}
}

// PromptFor selects and resolves the prompt for the state's current mode and counters.
func (r *Resolver) PromptFor(s *domain.State) Prompt {
	main, hasMain := s.CurrentMain()
	vars := r.vars(s, main)

	switch s.Mode {
	case domain.ModeCollectingSub:
		if sub, ok := s.CurrentSub(); ok {
			vars["label"] = sub.Label
			vars["main"] = main.Label
			return r.escalated(sub.ID, StepAsk, &sub.Steps.Ask, s.NoInput, s.NoMatch, DefaultAskSub, vars)
		}
	case domain.ModeCollectingMain:
		if hasMain {
			return r.escalated(main.ID, StepAsk, &main.Steps.Ask, s.NoInput, s.NoMatch, DefaultAsk, vars)
		}
	case domain.ModeConfirmingMain:
		if hasMain {
			return r.escalated(main.ID, StepConfirm, main.Steps.Confirm, s.NoInput, s.NoMatch, DefaultConfirm, vars)
		}
	case domain.ModeNotConfirmed:
		if hasMain {
			esc := main.Steps.NotConfirmed
			key := ""
			if esc != nil {
				key = esc.Base
				if n := s.NotConfirmedCounter; n > 0 && n <= len(esc.NotConfirmed) {
					key = esc.NotConfirmed[n-1]
				}
			}
			return Prompt{Key: key, Text: r.Resolve(key, DefaultNotConfirmed, vars), NodeID: main.ID, Step: StepNotConfirmed}
		}
	case domain.ModeSuccessMain:
		if hasMain {
			key := ""
			if n := len(main.Steps.Success); n > 0 {
				key = main.Steps.Success[s.CurrentMainIndex%n]
			}
			return Prompt{Key: key, Text: r.Resolve(key, DefaultSuccess, vars), NodeID: main.ID, Step: StepSuccess}
		}
	}
	return Prompt{Key: CompletedKey, Text: r.Resolve(CompletedKey, DefaultCompleted, vars), Step: StepCompleted}
}

// escalated picks base, noInput[n-1] or noMatch[n-1] from an escalation. The re-prompt
// defaults wrap the resolved base prompt.
func (r *Resolver) escalated(nodeID string, step Step, esc *domain.Escalation, noInput, noMatch int, def string, vars map[string]string) Prompt {
	var base string
	var key string
	if esc != nil {
		base = esc.Base
	}
	vars["prompt"] = r.Resolve(base, def, vars)

	text := vars["prompt"]
	switch {
	case noInput > 0:
		if esc != nil && noInput <= len(esc.NoInput) {
			key = esc.NoInput[noInput-1]
		}
		text = r.Resolve(key, DefaultNoInput, vars)
	case noMatch > 0:
		if esc != nil && noMatch <= len(esc.NoMatch) {
			key = esc.NoMatch[noMatch-1]
		}
		text = r.Resolve(key, DefaultNoMatch, vars)
	default:
		key = base
	}
	return Prompt{Key: key, Text: strings.TrimSpace(text), NodeID: nodeID, Step: step}
}

func (r *Resolver) vars(s *domain.State, main domain.Node) map[string]string {
	vars := map[string]string{
		"label": main.Label,
		"id":    main.ID,
	}
	if v, ok := s.Memory.Get(main.ID); ok {
		vars["value"] = v.String()
	}
	var options []string
	for _, sub := range s.Plan.Subs(main) {
		options = append(options, "choose:"+sub.ID)
		if v, ok := s.Memory.Get(sub.ID); ok {
			vars[sub.ID] = v.String()
		}
	}
	vars["options"] = strings.Join(options, ", ")
	return vars
}
