package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annavdvet2000/chatbot11directanswers/internal/infra/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 4, cfg.HistoryWindow)
	assert.Empty(t, cfg.ChatArchiveDSN)
	assert.False(t, cfg.OTelLogsEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("OTEL_LOGS_ENABLED", "true")
	t.Setenv("RAG_TOP_K_BAD", "notanint")

	cfg := config.Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 8, cfg.TopK)
	assert.True(t, cfg.OTelLogsEnabled)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RAG_TOP_K", "five")

	cfg := config.Load()

	assert.Equal(t, 5, cfg.TopK)
}

func TestLoad_SecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsn")
	require.NoError(t, os.WriteFile(path, []byte("postgres://u:p@h/db\n"), 0600))
	t.Setenv("CHAT_ARCHIVE_DSN_FILE", path)

	cfg := config.Load()

	assert.Equal(t, "postgres://u:p@h/db", cfg.ChatArchiveDSN)
}
