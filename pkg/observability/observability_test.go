package observability_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/pkg/observability"
	"github.com/aretw0/slotfill/pkg/schema"
)

const contactDoc = `
version: slotfill/v1
nodes:
  - id: email
    label: Email
    type: main
    kind: email
    steps:
      ask: {base: ask.email, noInput: [a, b, c], noMatch: [d, e, f]}
`

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics("test")
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	eng := slotfill.New(slotfill.WithLifecycleHooks(observability.Chain(
		m.Hooks(),
		observability.LoggingHooks(logger),
	)))

	tpl, err := schema.Compile([]byte(contactDoc))
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Init(ctx, "s1", tpl)
	require.NoError(t, err)

	state, err = eng.Advance(ctx, state, "mario@example.com")
	require.NoError(t, err)
	state, err = eng.Advance(ctx, state, "yes")
	require.NoError(t, err)
	state, err = eng.Advance(ctx, state, "")
	require.NoError(t, err)
	require.True(t, state.Terminal())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("email", "mixed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("CollectingMain", "ConfirmingMain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completed))

	assert.Contains(t, logs.String(), "msg=extract")
	assert.Contains(t, logs.String(), "msg=complete")
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics("")
	m.Enrichments.WithLabelValues("merged").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `slotfill_enrichments_total{outcome="merged"} 1`)
}

func TestChain_SkipsNil(t *testing.T) {
	h := observability.Chain(observability.LoggingHooks(slog.New(slog.NewTextHandler(io.Discard, nil))), observability.Chain())
	assert.NotNil(t, h.OnTransition)

	empty := observability.Chain()
	assert.Nil(t, empty.OnTransition)
	assert.Nil(t, empty.OnExtract)
	assert.Nil(t, empty.OnComplete)
}
