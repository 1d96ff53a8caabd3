package domain

// Mode is the current step of the slot-filling state machine.
type Mode string

const (
	ModeCollectingMain Mode = "CollectingMain" // Asking for the current main field
	ModeCollectingSub  Mode = "CollectingSub"  // Asking for one missing component
	ModeConfirmingMain Mode = "ConfirmingMain" // Waiting for yes/no on the composed value
	ModeNotConfirmed   Mode = "NotConfirmed"   // Value rejected, waiting for disambiguation
	ModeSuccessMain    Mode = "SuccessMain"    // Value confirmed, next turn moves on
	ModeCompleted      Mode = "Completed"      // Traversal order exhausted
)

// MaxEscalation caps every retry counter; templates declare exactly this many escalation prompts.
const MaxEscalation = 3

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Turn is a transcript entry.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	// NodeID is the field the turn was addressed to (the target before the transition for user turns).
	NodeID string `json:"node_id,omitempty"`
	Mode   Mode   `json:"mode,omitempty"`
}

// State is the full snapshot of one conversation. The engine never modifies a State it was
// given; each transition returns a new one.
type State struct {
	SessionID string `json:"session_id"`
	// TemplateID names the template the plan was built from, so transports can resolve prompts.
	TemplateID string `json:"template_id,omitempty"`

	Plan Plan `json:"plan"`
	Mode Mode `json:"mode"`

	// CurrentMainIndex indexes Plan.Order and always points at a main node until Completed.
	CurrentMainIndex int    `json:"current_main_index"`
	CurrentSubID     string `json:"current_sub_id,omitempty"`

	Memory     Memory `json:"memory"`
	Transcript []Turn `json:"transcript,omitempty"`

	NotConfirmedCounter int `json:"not_confirmed_counter,omitempty"`

	// NoInput and NoMatch count consecutive empty and unproductive turns on the same target.
	// At most one of them is non-zero.
	NoInput int `json:"no_input,omitempty"`
	NoMatch int `json:"no_match,omitempty"`
}

// NewState creates the initial state for a plan: CollectingMain at the first main, or
// Completed when the plan has no main node.
func NewState(sessionID string, plan Plan) *State {
	s := &State{
		SessionID:        sessionID,
		Plan:             plan,
		Mode:             ModeCollectingMain,
		CurrentMainIndex: plan.FirstMain(),
		Memory:           make(Memory),
	}
	if s.CurrentMainIndex < 0 {
		s.Mode = ModeCompleted
		s.CurrentMainIndex = len(plan.Order)
	}
	return s
}

// Snapshot returns a deep copy. The plan is shared since it is never mutated.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Memory = s.Memory.Clone()
	if s.Transcript != nil {
		out.Transcript = make([]Turn, len(s.Transcript))
		copy(out.Transcript, s.Transcript)
	}
	return &out
}

// CurrentMain returns the main node under the cursor.
func (s *State) CurrentMain() (Node, bool) {
	n, ok := s.Plan.At(s.CurrentMainIndex)
	if !ok || !n.IsMain() {
		return Node{}, false
	}
	return n, true
}

// CurrentSub returns the sub node targeted in CollectingSub.
func (s *State) CurrentSub() (Node, bool) {
	if s.CurrentSubID == "" {
		return Node{}, false
	}
	return s.Plan.Node(s.CurrentSubID)
}

// Target returns the id of the field the next utterance is addressed to.
func (s *State) Target() string {
	if s.Mode == ModeCollectingSub && s.CurrentSubID != "" {
		return s.CurrentSubID
	}
	if main, ok := s.CurrentMain(); ok {
		return main.ID
	}
	return ""
}

// Terminal reports whether the conversation has collected everything.
func (s *State) Terminal() bool {
	return s.Mode == ModeCompleted
}

// WithTurn returns a copy with t appended to the transcript. Callers use it to record bot prompts.
func (s *State) WithTurn(t Turn) *State {
	out := s.Snapshot()
	out.Transcript = append(out.Transcript, t)
	return out
}
