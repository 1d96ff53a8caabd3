package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDiff(t *testing.T) {
	plan := BuildPlan([]Node{{ID: "email", Type: NodeMain, Kind: KindEmail}})

	base := &State{
		SessionID: "sess-1",
		Plan:      plan,
		Mode:      ModeCollectingMain,
		Memory:    Memory{},
	}

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  base,
			wantDiff: &StateDiff{
				SessionID:        "sess-1",
				Mode:             ptr(ModeCollectingMain),
				CurrentMainIndex: ptr(0),
				CurrentSubID:     ptr(""),
			},
		},
		{
			name:     "No Changes",
			old:      base,
			new:      base.Snapshot(),
			wantDiff: nil,
		},
		{
			name: "Value Extracted",
			old:  base,
			new: func() *State {
				s := base.Snapshot()
				s.Mode = ModeConfirmingMain
				s.Memory = s.Memory.With("email", TextValue(KindEmail, "a@b.it"))
				s.Transcript = append(s.Transcript, Turn{Speaker: SpeakerUser, Text: "a@b.it", NodeID: "email"})
				return s
			}(),
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Mode:      ptr(ModeConfirmingMain),
				Memory: map[string]*Slot{
					"email": {Value: TextValue(KindEmail, "a@b.it")},
				},
				Transcript: []Turn{{Speaker: SpeakerUser, Text: "a@b.it", NodeID: "email"}},
			},
		},
		{
			name: "Confirmation Flag Only",
			old: func() *State {
				s := base.Snapshot()
				s.Memory = s.Memory.With("email", TextValue(KindEmail, "a@b.it"))
				return s
			}(),
			new: func() *State {
				s := base.Snapshot()
				s.Memory = s.Memory.With("email", TextValue(KindEmail, "a@b.it")).Confirm("email")
				return s
			}(),
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Memory: map[string]*Slot{
					"email": {Value: TextValue(KindEmail, "a@b.it"), Confirmed: true},
				},
			},
		},
		{
			name: "Deletion",
			old: func() *State {
				s := base.Snapshot()
				s.Memory = s.Memory.With("email", TextValue(KindEmail, "a@b.it"))
				return s
			}(),
			new: base,
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Memory:    map[string]*Slot{"email": nil},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			if got.Memory != nil && len(got.Memory) == 0 {
				got.Memory = nil
			}
			if d := cmp.Diff(tt.wantDiff, got); d != "" {
				t.Errorf("Diff() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestDiff_JSONOmitsUnchanged(t *testing.T) {
	old := &State{SessionID: "s", Mode: ModeCollectingMain, Memory: Memory{}}
	next := old.Snapshot()
	next.Mode = ModeCompleted

	raw, err := json.Marshal(Diff(old, next))
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s","mode":"Completed"}`, string(raw))
}
