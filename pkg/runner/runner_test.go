package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/pkg/adapters/memory"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/runner"
	"github.com/aretw0/slotfill/pkg/schema"
)

const emailDoc = `
version: slotfill/v1
id: contact
nodes:
  - id: email
    label: email
    type: main
    kind: email
    steps:
      ask:
        base: ask.email
        noInput: [ask.email.ni1, ask.email.ni2, ask.email.ni3]
        noMatch: [ask.email.nm1, ask.email.nm2, ask.email.nm3]
      confirm:
        base: confirm.email
        noInput: [confirm.email.ni1, confirm.email.ni2, confirm.email.ni3]
        noMatch: [confirm.email.nm1, confirm.email.nm2, confirm.email.nm3]
        notConfirmed: [confirm.email.nc1, confirm.email.nc2, confirm.email.nc3]
messages:
  ask:
    email: What is your email address?
`

func compile(t *testing.T) *schema.Template {
	t.Helper()
	tpl, err := schema.Compile([]byte(emailDoc))
	require.NoError(t, err)
	return tpl
}

func TestRunner_Run_BasicFlow(t *testing.T) {
	tpl := compile(t)
	store := memory.NewStore()
	out := &bytes.Buffer{}

	r := runner.NewRunner(
		runner.WithSessionID("s1"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("mario.rossi@example.it\nyes\n\n"), out)),
	)

	final, err := r.Run(context.Background(), slotfill.New(), tpl, nil)
	require.NoError(t, err)
	assert.True(t, final.Terminal())
	assert.Equal(t, "s1", final.SessionID)
	assert.True(t, final.Memory.Confirmed("email"))

	saved, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeCompleted, saved.Mode)

	text := out.String()
	assert.Contains(t, text, "What is your email address?")
	assert.Contains(t, text, "Is mario.rossi@example.it correct?")
	assert.Contains(t, text, "email: mario.rossi@example.it")

	var bot, user int
	for _, turn := range final.Transcript {
		switch turn.Speaker {
		case domain.SpeakerBot:
			bot++
		case domain.SpeakerUser:
			user++
		}
	}
	assert.Equal(t, 4, bot, "ask, confirm, success and completed prompts")
	assert.Equal(t, 2, user, "the empty turn is not recorded")
}

func TestRunner_Run_Exit(t *testing.T) {
	tpl := compile(t)
	store := memory.NewStore()

	r := runner.NewRunner(
		runner.WithSessionID("s2"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("mario.rossi@example.it\nQUIT\n"), &bytes.Buffer{})),
	)

	final, err := r.Run(context.Background(), slotfill.New(), tpl, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeConfirmingMain, final.Mode)

	saved, err := store.Load(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeConfirmingMain, saved.Mode)
}

func TestRunner_Run_Resume(t *testing.T) {
	tpl := compile(t)
	eng := slotfill.New()
	ctx := context.Background()

	state, err := eng.Init(ctx, "s3", tpl)
	require.NoError(t, err)
	state, err = eng.Advance(ctx, state, "mario.rossi@example.it")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("yes\nok\n"), out)))

	final, err := r.Run(ctx, eng, tpl, state)
	require.NoError(t, err)
	assert.True(t, final.Terminal())
	assert.True(t, strings.HasPrefix(out.String(), "Is mario.rossi@example.it correct?"))
}

func TestRunner_Run_RejectsOversizedInput(t *testing.T) {
	tpl := compile(t)
	out := &bytes.Buffer{}

	r := runner.NewRunner(
		runner.WithMaxInputSize(30),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(strings.Repeat("x", 31)+"\n"), out)),
	)

	final, err := r.Run(context.Background(), slotfill.New(), tpl, nil)
	require.NoError(t, err, "end of input is a clean stop")
	assert.Equal(t, domain.ModeCollectingMain, final.Mode)
	assert.Contains(t, out.String(), "[System] Error: input exceeds maximum allowed size")
	assert.NotEmpty(t, final.SessionID, "a session id is generated")
}

func TestRunner_Run_StartError(t *testing.T) {
	r := runner.NewRunner(runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(""), &bytes.Buffer{})))

	_, err := r.Run(context.Background(), slotfill.New(), nil, nil)
	assert.ErrorIs(t, err, slotfill.ErrNilTemplate)
}

func TestRespond(t *testing.T) {
	tpl := compile(t)
	eng := slotfill.New()
	ctx := context.Background()

	start, err := runner.Start(ctx, eng, "s4", tpl)
	require.NoError(t, err)
	assert.Equal(t, "What is your email address?", start.Prompt.Text)
	require.Len(t, start.State.Transcript, 1)

	resp, err := runner.Respond(ctx, eng, tpl, start.State, "mario.rossi@example.it")
	require.NoError(t, err)
	require.NotNil(t, resp.Diff)
	require.NotNil(t, resp.Diff.Mode)
	assert.Equal(t, domain.ModeConfirmingMain, *resp.Diff.Mode)
	assert.Len(t, resp.Diff.Transcript, 2, "user turn and bot prompt")
	assert.Contains(t, resp.Diff.Memory, "email")
	assert.Nil(t, resp.Summary)
}
