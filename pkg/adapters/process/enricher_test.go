package process_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill/pkg/adapters/process"
	"github.com/aretw0/slotfill/pkg/enrich"
)

func sh(t *testing.T, script string) *process.Enricher {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	return process.New("sh", []string{"-c", script})
}

func TestEnricher(t *testing.T) {
	ctx := context.Background()
	req := enrich.Request{SessionID: "s1", FieldID: "addr", Text: "Via Roma 10"}

	t.Run("Reads Response From Stdout", func(t *testing.T) {
		e := sh(t, `cat >/dev/null; echo '{"found":true,"fields":{"street":"Via Roma","number":"10"}}'`)
		resp, err := e.Enrich(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Found)
		assert.Equal(t, "Via Roma", resp.Fields["street"])
	})

	t.Run("Passes Request Via Stdin And Env", func(t *testing.T) {
		e := sh(t, `grep -q '"text":"Via Roma 10"' && printf '{"found":true,"fields":{"city":"%s"}}' "$SLOTFILL_ARG_FIELD_ID"`)
		resp, err := e.Enrich(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "addr", resp.Fields["city"])
	})

	t.Run("Empty Output Means Not Found", func(t *testing.T) {
		resp, err := sh(t, `cat >/dev/null`).Enrich(ctx, req)
		require.NoError(t, err)
		assert.False(t, resp.Found)
	})

	t.Run("Non-Zero Exit", func(t *testing.T) {
		_, err := sh(t, `echo boom >&2; exit 3`).Enrich(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with 3")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := sh(t, `echo nope`).Enrich(ctx, req)
		assert.ErrorContains(t, err, "invalid JSON")
	})

	t.Run("Context Deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := sh(t, `sleep 5`).Enrich(ctx, req)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Extra Env", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("requires a POSIX shell")
		}
		e := process.New("sh", []string{"-c", `printf '{"found":true,"fields":{"country":"%s"}}' "$REGION"`}, process.WithEnv("REGION=IT"))
		resp, err := e.Enrich(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "IT", resp.Fields["country"])
	})
}

func TestParse(t *testing.T) {
	assert.Nil(t, process.Parse("   "))
	assert.NotNil(t, process.Parse("python3 enrich.py --strict"))
}
