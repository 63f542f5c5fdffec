package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OLLAMA_URL", "EMBED_MODEL", "PORT", "REDIS_DB", "CACHE_TTL_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "nomic-embed-text", cfg.EmbedModel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 3600, cfg.CacheTTLSecs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://ollama:11434", cfg.OllamaURL)
	assert.Equal(t, "gsk_test", cfg.GroqAPIKey)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 60, cfg.CacheTTLSecs)
}

func TestLoadRejectsInvalidInts(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}
