package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/slotfill/internal/presentation/graph"
	"github.com/aretw0/slotfill/pkg/domain"
)

func optional() *bool {
	f := false
	return &f
}

func testPlan() domain.Plan {
	return domain.BuildPlan([]domain.Node{
		{ID: "dob", Label: "Date of birth", Type: domain.NodeMain, Kind: domain.KindDate, Subs: []string{"dob-day"}},
		{ID: "dob-day", Label: "Day", Type: domain.NodeSub, Kind: domain.KindNumber},
		{ID: "email", Label: "Email", Type: domain.NodeMain, Kind: domain.KindEmail},
		{ID: "notes", Label: "Say \"hi\"", Type: domain.NodeMain, Kind: domain.KindGeneric, Required: optional()},
		{ID: "done", Label: "Done", Type: domain.NodeMain, Kind: domain.KindGeneric},
	})
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(testPlan(), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Header And Terminals", []string{"graph TD\n", `start(("start"))`, `done(("done"))`}},
		{"Composite Shape", []string{`dob[["Date of birth <br/> date"]]`}},
		{"Constrained Shape", []string{`email[/"Email <br/> email"/]`}},
		{"Optional And Quotes", []string{`notes["Say 'hi'? <br/> generic"]`}},
		{"Main Chain", []string{"start --> dob", "dob --> email", "email --> notes", "notes --> n_done", "n_done --> done"}},
		{"Sub Edge Sanitized", []string{"dob -.-> dob_day", `dob_day["Day <br/> number"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}

	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	plan := testPlan()
	state := domain.NewState("s1", plan)
	state.Memory = state.Memory.
		With("dob", domain.DateOf(1, 2, 1990)).
		Confirm("dob").
		With("email", domain.TextValue(domain.KindEmail, "a@b.it"))
	state.CurrentMainIndex = 2
	state.Mode = domain.ModeConfirmingMain

	overlay := graph.OverlayOf(state)
	assert.Equal(t, []string{"dob"}, overlay.Confirmed)
	assert.Equal(t, []string{"email"}, overlay.Filled)
	assert.Equal(t, "email", overlay.Current)

	overlay.Filled = append(overlay.Filled, "ghost")
	out := graph.GenerateMermaid(plan, overlay)
	assert.Contains(t, out, "class dob confirmed;")
	assert.Contains(t, out, "class email filled;")
	assert.Contains(t, out, "class email current;")
	assert.False(t, strings.Contains(out, "ghost"))
}
