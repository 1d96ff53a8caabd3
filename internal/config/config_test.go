package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "IT", cfg.Region)
	assert.Equal(t, 4096, cfg.MaxInputSize)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.EnrichTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.SessionsDir)
	assert.Nil(t, cfg.EncryptionKey)
	assert.False(t, cfg.PIIMasking)
}

func TestLoad_Env(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	old := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("o", 32)))

	t.Setenv("SLOTFILL_ADDR", ":9090")
	t.Setenv("SLOTFILL_REDIS_DB", "3")
	t.Setenv("SLOTFILL_SESSION_TTL", "15m")
	t.Setenv("SLOTFILL_PII_PATTERNS", "iban, tax_.* ,")
	t.Setenv("SLOTFILL_PII_MASKING", "true")
	t.Setenv("SLOTFILL_ENCRYPTION_KEY", key)
	t.Setenv("SLOTFILL_ENCRYPTION_FALLBACK_KEYS", old)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"iban", "tax_.*"}, cfg.PIIPatterns)
	assert.True(t, cfg.PIIMasking)
	assert.Len(t, cfg.EncryptionKey, 32)
	require.Len(t, cfg.FallbackKeys, 1)
	assert.Equal(t, byte('o'), cfg.FallbackKeys[0][0])
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SLOTFILL_REGION=GB\nSLOTFILL_ENRICH_URL=http://enrich.local\n"), 0o644))
	t.Setenv("SLOTFILL_REGION", "")
	t.Setenv("SLOTFILL_ENRICH_URL", "")
	os.Unsetenv("SLOTFILL_REGION")
	os.Unsetenv("SLOTFILL_ENRICH_URL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "GB", cfg.Region)
	assert.Equal(t, "http://enrich.local", cfg.EnrichURL)
}

func TestLoad_InvalidKey(t *testing.T) {
	t.Run("Short Key", func(t *testing.T) {
		t.Setenv("SLOTFILL_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorContains(t, err, "32 bytes")
	})

	t.Run("Fallback Without Active", func(t *testing.T) {
		t.Setenv("SLOTFILL_ENCRYPTION_KEY", "")
		t.Setenv("SLOTFILL_ENCRYPTION_FALLBACK_KEYS", base64.StdEncoding.EncodeToString([]byte(strings.Repeat("o", 32))))
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
}
