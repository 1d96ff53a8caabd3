package domain

import "reflect"

// Slot is the memory cell of a single field.
type Slot struct {
	Value     Value `json:"value"`
	Confirmed bool  `json:"confirmed,omitempty"`
}

// Memory maps field ids to their slots.
// Every method returns a fresh map; receivers are never modified.
type Memory map[string]Slot

// Present reports whether the field holds a value with non-empty textual representation.
func (m Memory) Present(id string) bool {
	s, ok := m[id]
	return ok && !s.Value.IsZero()
}

// Confirmed reports whether the field was explicitly confirmed.
func (m Memory) Confirmed(id string) bool {
	return m[id].Confirmed
}

// Get returns the value held for id.
func (m Memory) Get(id string) (Value, bool) {
	s, ok := m[id]
	if !ok || s.Value.IsZero() {
		return Value{}, false
	}
	return s.Value, true
}

// Clone returns a shallow copy. Slot values are immutable so this is a full copy in practice.
func (m Memory) Clone() Memory {
	out := make(Memory, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// With returns a copy holding v for id. Writing a value always resets confirmation.
func (m Memory) With(id string, v Value) Memory {
	out := m.Clone()
	out[id] = Slot{Value: v}
	return out
}

// Confirm returns a copy with the given fields marked as confirmed.
func (m Memory) Confirm(ids ...string) Memory {
	out := m.Clone()
	for _, id := range ids {
		if s, ok := out[id]; ok {
			s.Confirmed = true
			out[id] = s
		}
	}
	return out
}

// Without returns a copy with the given fields removed.
func (m Memory) Without(ids ...string) Memory {
	out := m.Clone()
	for _, id := range ids {
		delete(out, id)
	}
	return out
}

// Equal reports whether both memories hold the same slots.
func (m Memory) Equal(other Memory) bool {
	if len(m) != len(other) {
		return false
	}
	if len(m) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]Slot(m), map[string]Slot(other))
}
