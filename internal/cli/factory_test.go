package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill/internal/config"
	"github.com/aretw0/slotfill/internal/logging"
	"github.com/aretw0/slotfill/internal/testutils"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/observability"
)

const contactDoc = testutils.ContactDoc

func TestNewEngine(t *testing.T) {
	dir := testutils.WriteTemplates(t, map[string]string{
		"contact.yaml": contactDoc,
		"lang/en.yaml": "ask:\n  email: Mail?\n",
	})
	table := filepath.Join(dir, "lang", "en.yaml")
	tplPath := filepath.Join(dir, "contact.yaml")

	metrics := observability.NewMetrics("")
	eng, err := NewEngine(&config.Config{Region: "IT", MessagesFile: table}, logging.New(slog.LevelDebug), metrics)
	require.NoError(t, err)

	ctx := context.Background()
	tpl, err := ResolveTemplate(ctx, tplPath, dir)
	require.NoError(t, err)
	state, err := eng.Init(ctx, "s1", tpl)
	require.NoError(t, err)
	assert.Equal(t, "Mail?", eng.Prompt(tpl, state).Text)

	_, err = NewEngine(&config.Config{MessagesFile: filepath.Join(dir, "missing.yaml")}, logging.NewNop(), nil)
	assert.Error(t, err)
}

func TestResolveTemplate_ByID(t *testing.T) {
	dir := testutils.WriteTemplates(t, map[string]string{"contact.yaml": contactDoc})

	tpl, err := ResolveTemplate(context.Background(), "contact", dir)
	require.NoError(t, err)
	assert.Equal(t, "contact", tpl.ID)

	_, err = ResolveTemplate(context.Background(), "contact", filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	state := domain.NewState("s1", domain.BuildPlan([]domain.Node{{ID: "email", Type: domain.NodeMain, Kind: domain.KindEmail}}))
	state.Memory = state.Memory.With("email", domain.TextValue(domain.KindEmail, "mario@example.it"))

	t.Run("Memory With PII Masking", func(t *testing.T) {
		store, locker := NewStore(&config.Config{PIIMasking: true})
		assert.Nil(t, locker)
		require.NoError(t, store.Save(ctx, "s1", state))

		loaded, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		v, _ := loaded.Memory.Get("email")
		assert.NotEqual(t, "mario@example.it", v.String())
	})

	t.Run("File Store", func(t *testing.T) {
		dir := t.TempDir()
		store, locker := NewStore(&config.Config{SessionsDir: dir})
		assert.Nil(t, locker)
		require.NoError(t, store.Save(ctx, "s1", state))
		assert.FileExists(t, filepath.Join(dir, "s1.json"))
	})

	t.Run("Redis With Encryption", func(t *testing.T) {
		mr := miniredis.RunT(t)
		key := []byte(strings.Repeat("k", 32))
		cfg := &config.Config{RedisAddr: mr.Addr(), SessionTTL: time.Hour, EncryptionKey: key}

		store, locker := NewStore(cfg)
		require.NotNil(t, locker)
		require.NoError(t, store.Save(ctx, "s1", state))

		raw, err := mr.Get("slotfill:session:s1")
		require.NoError(t, err)
		assert.NotContains(t, raw, "mario@example.it")

		loaded, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		v, _ := loaded.Memory.Get("email")
		assert.Equal(t, "mario@example.it", v.String())

		unlock, err := locker.Lock(ctx, "s1", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

}

func TestNewDispatcher(t *testing.T) {
	assert.Nil(t, NewDispatcher(&config.Config{}, logging.NewNop()))
	assert.NotNil(t, NewDispatcher(&config.Config{EnrichURL: "http://localhost:1", EnrichTimeout: time.Second}, logging.NewNop()))
	assert.NotNil(t, NewDispatcher(&config.Config{EnrichCommand: "./enrich.sh --json"}, logging.NewNop()))
	assert.Nil(t, NewDispatcher(&config.Config{EnrichCommand: "  "}, logging.NewNop()))
}
