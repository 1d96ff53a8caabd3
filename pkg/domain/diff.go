package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Mode             *Mode   `json:"mode,omitempty"`
	CurrentMainIndex *int    `json:"current_main_index,omitempty"`
	CurrentSubID     *string `json:"current_sub_id,omitempty"`

	// Memory contains only changed, added or deleted slots.
	// For deletions, the key is present with a nil value.
	Memory map[string]*Slot `json:"memory,omitempty"`

	// Transcript contains the turns appended since the old state.
	Transcript []Turn `json:"transcript,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.Mode != newState.Mode {
		diff.Mode = &newState.Mode
	}
	if oldState == nil || oldState.CurrentMainIndex != newState.CurrentMainIndex {
		diff.CurrentMainIndex = &newState.CurrentMainIndex
	}
	if oldState == nil || oldState.CurrentSubID != newState.CurrentSubID {
		diff.CurrentSubID = &newState.CurrentSubID
	}

	diff.Memory = diffMemory(oldState, newState)
	diff.Transcript = diffTranscript(oldState, newState)

	if diff.Mode == nil &&
		diff.CurrentMainIndex == nil &&
		diff.CurrentSubID == nil &&
		len(diff.Memory) == 0 &&
		len(diff.Transcript) == 0 {
		return nil
	}
	return diff
}

func diffMemory(oldState, newState *State) map[string]*Slot {
	var old Memory
	if oldState != nil {
		old = oldState.Memory
	}

	delta := make(map[string]*Slot)
	for id, slot := range newState.Memory {
		prev, ok := old[id]
		if !ok || !sameSlot(prev, slot) {
			s := slot
			delta[id] = &s
		}
	}
	for id := range old {
		if _, ok := newState.Memory[id]; !ok {
			delta[id] = nil
		}
	}
	return delta
}

func sameSlot(a, b Slot) bool {
	return a.Confirmed == b.Confirmed && a.Value.Kind == b.Value.Kind && a.Value.String() == b.Value.String()
}

func diffTranscript(oldState, newState *State) []Turn {
	start := 0
	if oldState != nil {
		start = len(oldState.Transcript)
	}
	if start >= len(newState.Transcript) {
		return nil
	}
	out := make([]Turn, len(newState.Transcript)-start)
	copy(out, newState.Transcript[start:])
	return out
}
