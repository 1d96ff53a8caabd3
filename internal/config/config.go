package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings of the slotfill binaries.
type Config struct {
	// Server configuration
	Addr         string
	TemplatesDir string

	// Session storage. RedisAddr wins over SessionsDir; with neither set sessions stay in memory.
	SessionsDir   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// Engine
	Region       string
	MessagesFile string
	MaxInputSize int

	// Background enrichment over HTTP, or through a local command when EnrichURL is empty.
	// With neither set enrichment is disabled.
	EnrichURL     string
	EnrichCommand string
	EnrichTimeout time.Duration

	LogLevel string

	// Security
	EncryptionKey []byte
	FallbackKeys  [][]byte
	PIIPatterns   []string
	PIIMasking    bool
}

// Load reads the optional .env files (default ".env"), then the SLOTFILL_* environment.
// Values already present in the environment win over .env entries.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Addr:          getEnv("SLOTFILL_ADDR", ":8080"),
		TemplatesDir:  getEnv("SLOTFILL_TEMPLATES", "."),
		SessionsDir:   getEnv("SLOTFILL_SESSIONS_DIR", ""),
		RedisAddr:     getEnv("SLOTFILL_REDIS_ADDR", ""),
		RedisPassword: getEnv("SLOTFILL_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("SLOTFILL_REDIS_DB", 0),
		SessionTTL:    getEnvDuration("SLOTFILL_SESSION_TTL", 24*time.Hour),
		Region:        getEnv("SLOTFILL_REGION", "IT"),
		MessagesFile:  getEnv("SLOTFILL_MESSAGES", ""),
		MaxInputSize:  getEnvInt("SLOTFILL_MAX_INPUT_SIZE", 4096),
		EnrichURL:     getEnv("SLOTFILL_ENRICH_URL", ""),
		EnrichCommand: getEnv("SLOTFILL_ENRICH_COMMAND", ""),
		EnrichTimeout: getEnvDuration("SLOTFILL_ENRICH_TIMEOUT", 3*time.Second),
		LogLevel:      getEnv("SLOTFILL_LOG_LEVEL", "info"),
		PIIPatterns:   getEnvList("SLOTFILL_PII_PATTERNS"),
		PIIMasking:    getEnvBool("SLOTFILL_PII_MASKING", false),
	}

	var err error
	if cfg.EncryptionKey, err = decodeKey(os.Getenv("SLOTFILL_ENCRYPTION_KEY")); err != nil {
		return nil, fmt.Errorf("SLOTFILL_ENCRYPTION_KEY: %w", err)
	}
	for i, raw := range getEnvList("SLOTFILL_ENCRYPTION_FALLBACK_KEYS") {
		key, err := decodeKey(raw)
		if err != nil {
			return nil, fmt.Errorf("SLOTFILL_ENCRYPTION_FALLBACK_KEYS[%d]: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	if len(cfg.FallbackKeys) > 0 && cfg.EncryptionKey == nil {
		return nil, fmt.Errorf("SLOTFILL_ENCRYPTION_FALLBACK_KEYS set without SLOTFILL_ENCRYPTION_KEY")
	}
	return cfg, nil
}

// decodeKey accepts an empty string or a base64 encoded 32-byte key.
func decodeKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
