package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/dsl"
	"github.com/aretw0/slotfill/pkg/schema"
)

func signup() *dsl.Builder {
	b := dsl.New("signup").Label("Sign up")
	b.Main("name", domain.KindName).Label("Full name")
	b.Main("dob", domain.KindDate).
		Label("Date of birth").
		Subs("dob_day", "dob_month", "dob_year").
		Confirm().
		Disambiguate().
		Success("ok.1")
	b.Sub("dob_day", domain.KindNumber).Label("Day")
	b.Sub("dob_month", domain.KindNumber).Label("Month")
	b.Sub("dob_year", domain.KindNumber).Label("Year")
	b.Main("notes", domain.KindGeneric).Optional()
	b.Message("ask.name", "What's your name?")
	return b
}

func TestBuilder_Build(t *testing.T) {
	tpl, err := signup().Build()
	require.NoError(t, err)

	assert.Equal(t, "signup", tpl.ID)
	assert.Equal(t, "Sign up", tpl.Label)
	assert.Equal(t, []string{"name", "dob", "dob_day", "dob_month", "dob_year", "notes"}, tpl.Plan().Order)

	dob, ok := tpl.Plan().Node("dob")
	require.True(t, ok)
	assert.Equal(t, "ask.dob", dob.Steps.Ask.Base)
	assert.Equal(t, []string{"ask.dob.ni1", "ask.dob.ni2", "ask.dob.ni3"}, dob.Steps.Ask.NoInput)
	assert.Equal(t, []string{"ask.dob.nm1", "ask.dob.nm2", "ask.dob.nm3"}, dob.Steps.Ask.NoMatch)
	require.NotNil(t, dob.Steps.Confirm)
	assert.Equal(t, "confirm.dob", dob.Steps.Confirm.Base)
	assert.Equal(t, []string{"confirm.dob.nc1", "confirm.dob.nc2", "confirm.dob.nc3"}, dob.Steps.Confirm.NotConfirmed)
	require.NotNil(t, dob.Steps.NotConfirmed)
	assert.Len(t, dob.Steps.NotConfirmed.NotConfirmed, domain.MaxEscalation)

	notes, _ := tpl.Plan().Node("notes")
	assert.False(t, notes.IsRequired())
	assert.Equal(t, "What's your name?", tpl.Messages["ask.name"])
}

func TestBuilder_DrivesEngine(t *testing.T) {
	tpl, err := signup().Build()
	require.NoError(t, err)

	eng := slotfill.New()
	state, err := eng.Init(context.Background(), "s1", tpl)
	require.NoError(t, err)
	assert.Equal(t, "signup", state.TemplateID)
	assert.Equal(t, "What's your name?", eng.Prompt(tpl, state).Text)
}

func TestBuilder_Invalid(t *testing.T) {
	t.Run("Unknown Kind", func(t *testing.T) {
		b := dsl.New("bad")
		b.Main("x", domain.Kind("colour"))
		_, err := b.Build()
		require.Error(t, err)
		assert.NotEmpty(t, schema.IssuesOf(err))
	})

	t.Run("Dangling Sub", func(t *testing.T) {
		b := dsl.New("bad")
		b.Main("dob", domain.KindDate).Subs("dob_day")
		_, err := b.Build()
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := dsl.New("empty").Build()
		assert.Error(t, err)
	})
}

func TestBuilder_YAMLRoundTrip(t *testing.T) {
	data, err := signup().YAML()
	require.NoError(t, err)

	tpl, err := schema.Compile(data)
	require.NoError(t, err)
	assert.Len(t, tpl.Nodes, 6)
}

func TestBuilder_MainReturnsExisting(t *testing.T) {
	b := dsl.New("t")
	first := b.Main("email", domain.KindEmail)
	assert.Same(t, first, b.Main("email", domain.KindEmail))
}
