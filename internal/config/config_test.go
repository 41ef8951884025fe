package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queryquest/internal/game"
)

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.RoundSeconds, cfg.RoundSeconds)
	assert.Equal(t, want.QueryTimeout, cfg.QueryTimeout)
	assert.Equal(t, want.TickInterval, cfg.TickInterval)
	assert.Equal(t, want.MaxNameLength, cfg.MaxNameLength)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ROUND_SECONDS", "40")
	t.Setenv("TICK_INTERVAL", "500ms")
	t.Setenv("QUERY_TIMEOUT", "2s")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.RoundSeconds)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 80, cfg.GameSettings().RoundTicks)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("HINT_SEGMENTS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HINT_SEGMENTS")

	t.Setenv("HINT_SEGMENTS", "four")
	_, err = Load()
	assert.Error(t, err)
}

func TestGameSettingsFromDefault(t *testing.T) {
	assert.Equal(t, game.DefaultSettings(), Default().GameSettings())
}

func TestSandboxURLRequiresReadonlyRole(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.DevMode())
	cfg.DatabaseURL = "postgres://app@localhost/quest"
	assert.False(t, cfg.DevMode())

	_, err := cfg.SandboxURL()
	assert.ErrorIs(t, err, ErrNoReadonlyRole)

	cfg.ReadonlyDatabaseURL = cfg.DatabaseURL
	_, err = cfg.SandboxURL()
	assert.ErrorIs(t, err, ErrNoReadonlyRole)

	cfg.ReadonlyDatabaseURL = "postgres://readonly@localhost/quest"
	url, err := cfg.SandboxURL()
	require.NoError(t, err)
	assert.Equal(t, cfg.ReadonlyDatabaseURL, url)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUERYQUEST_DOTENV_CHECK=from-file\n"), 0o600))
	t.Setenv("QUERYQUEST_DOTENV_CHECK", "")
	require.NoError(t, os.Unsetenv("QUERYQUEST_DOTENV_CHECK"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("QUERYQUEST_DOTENV_CHECK"))
}

func TestLoadDotEnvEarlierFileWins(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("QUERYQUEST_DOTENV_ORDER=local\n"), 0o600))
	require.NoError(t, os.WriteFile(shared, []byte("QUERYQUEST_DOTENV_ORDER=shared\nQUERYQUEST_DOTENV_ONLY_SHARED=yes\n"), 0o600))
	t.Setenv("QUERYQUEST_DOTENV_ORDER", "")
	t.Setenv("QUERYQUEST_DOTENV_ONLY_SHARED", "")
	require.NoError(t, os.Unsetenv("QUERYQUEST_DOTENV_ORDER"))
	require.NoError(t, os.Unsetenv("QUERYQUEST_DOTENV_ONLY_SHARED"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing"), local, shared))
	assert.Equal(t, "local", os.Getenv("QUERYQUEST_DOTENV_ORDER"))
	assert.Equal(t, "yes", os.Getenv("QUERYQUEST_DOTENV_ONLY_SHARED"))
}
