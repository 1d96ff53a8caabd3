package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill/pkg/domain"
)

func contractPlan() domain.Plan {
	return domain.BuildPlan([]domain.Node{
		{ID: "dob", Label: "Date of birth", Type: domain.NodeMain, Kind: domain.KindDate, Subs: []string{"dob_day", "dob_month", "dob_year"}},
		{ID: "dob_day", Label: "Day", Type: domain.NodeSub, Kind: domain.KindNumber},
		{ID: "dob_month", Label: "Month", Type: domain.NodeSub, Kind: domain.KindNumber},
		{ID: "dob_year", Label: "Year", Type: domain.NodeSub, Kind: domain.KindNumber},
		{ID: "email", Label: "Email", Type: domain.NodeMain, Kind: domain.KindEmail},
	})
}

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, contractPlan())
		state.TemplateID = "registration"
		state.Mode = domain.ModeCollectingSub
		state.CurrentSubID = "dob_month"
		state.Memory = state.Memory.
			With("dob_day", domain.TextValue(domain.KindNumber, "12")).
			With("dob_year", domain.TextValue(domain.KindNumber, "1990")).
			With("email", domain.TextValue(domain.KindEmail, "mario@example.com")).
			Confirm("email")
		state.Transcript = []domain.Turn{{Speaker: domain.SpeakerUser, Text: "12 1990", NodeID: "dob", Mode: domain.ModeCollectingMain}}
		state.NoMatch = 1

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "registration", loaded.TemplateID)
		assert.Equal(t, state.Mode, loaded.Mode)
		assert.Equal(t, state.CurrentMainIndex, loaded.CurrentMainIndex)
		assert.Equal(t, "dob_month", loaded.CurrentSubID)
		assert.Equal(t, state.Plan.Order, loaded.Plan.Order)
		assert.True(t, loaded.Memory.Confirmed("email"))
		assert.True(t, state.Memory.Equal(loaded.Memory), "memory must survive a round trip")
		assert.Equal(t, state.Transcript, loaded.Transcript)
		assert.Equal(t, 1, loaded.NoMatch)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, contractPlan()))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, contractPlan()))
		_ = store.Save(ctx, id2, domain.NewState(id2, contractPlan()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunTemplateLoaderContract verifies that a TemplateLoader serves exactly the given template ids.
func RunTemplateLoaderContract(t *testing.T, loader TemplateLoader, ids []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		for _, id := range ids {
			tpl, err := loader.Get(ctx, id)
			require.NoError(t, err, "template %s", id)
			assert.Equal(t, id, tpl.ID)
			assert.NotEmpty(t, tpl.Plan().Order)
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		_, err := loader.Get(ctx, "non-existent-template")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("List", func(t *testing.T) {
		got, err := loader.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, ids, got)
	})
}
