package slotfill_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/messages"
	"github.com/aretw0/slotfill/pkg/schema"
)

func loadTemplate(t *testing.T) *schema.Template {
	t.Helper()
	tpl, err := schema.Load("pkg/schema/testdata/registration.yaml")
	require.NoError(t, err)
	return tpl
}

func TestFacade_Conversation(t *testing.T) {
	ctx := context.Background()
	tpl := loadTemplate(t)

	var completed *domain.State
	eng := slotfill.New(
		slotfill.WithMessages(messages.Table{"ask.email": "Mail, please."}, nil),
		slotfill.WithLifecycleHooks(domain.LifecycleHooks{
			OnComplete: func(_ context.Context, s *domain.State) { completed = s },
		}),
	)

	state, err := eng.Init(ctx, "sess-1", tpl)
	require.NoError(t, err)
	assert.Equal(t, "What is your full name?", eng.Prompt(tpl, state).Text)

	state, err = eng.Advance(ctx, state, "My name is Mario Rossi and I was born on 12/05/1990")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeConfirmingMain, state.Mode)
	assert.Equal(t, "Mario Rossi", state.Memory["name"].Value.String())
	assert.Equal(t, "12/05/1990", state.Memory["dob"].Value.String())

	for _, in := range []string{"yes", "", "yes", ""} {
		state, err = eng.Advance(ctx, state, in)
		require.NoError(t, err)
	}

	// The date was pre-filled, so it was confirmed without being asked.
	main, _ := state.CurrentMain()
	assert.Equal(t, "email", main.ID)
	assert.Equal(t, domain.ModeCollectingMain, state.Mode)
	assert.Equal(t, "Mail, please.", eng.Prompt(tpl, state).Text)

	state, err = eng.Advance(ctx, state, "mario.rossi@example.it")
	require.NoError(t, err)
	state, err = eng.Advance(ctx, state, "sì")
	require.NoError(t, err)
	state, err = eng.Advance(ctx, state, "")
	require.NoError(t, err)

	assert.True(t, state.Terminal())
	assert.Same(t, state, completed)
	assert.Equal(t, messages.DefaultCompleted, eng.Prompt(tpl, state).Text)
}

func TestFacade_InitErrors(t *testing.T) {
	eng := slotfill.New()

	_, err := eng.Init(context.Background(), "s", nil)
	assert.ErrorIs(t, err, slotfill.ErrNilTemplate)

	broken := &schema.Template{ID: "broken", Nodes: []domain.Node{
		{ID: "dob", Type: domain.NodeMain, Kind: domain.KindDate, Subs: []string{"missing"}},
	}}
	_, err = eng.Init(context.Background(), "s", broken)
	var issues schema.Issues
	require.ErrorAs(t, err, &issues)
	assert.Len(t, issues, 1)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(slotfill.Version))
}
