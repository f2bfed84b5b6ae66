package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/nutritionist")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "localhost:3000", cfg.HTTPAddr)
	require.Equal(t, "postgres", cfg.KV.Backend)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	require.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	require.Equal(t, 30, cfg.Tips.HistoryWindow)
	require.Equal(t, 100, cfg.Tips.HistoryCap)
	require.Equal(t, 10, cfg.Limits.FreeChat)
	require.Equal(t, 999, cfg.Limits.PremiumPhoto)
}

func TestLoad_MissingDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	os.Unsetenv("DB_URL")

	_, err := Load("")
	require.Error(t, err)
}

// TestLoad_EnvFile verifies values come from the .env file and that variables
// already present in the environment win.
func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("KV_BACKEND", "redis")
	// Register for cleanup; godotenv sets these directly.
	t.Setenv("DB_URL", "")
	os.Unsetenv("DB_URL")
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DB_URL=postgres://db/from-file\nKV_BACKEND=memory\nREDIS_ADDR=cache:6380\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://db/from-file", cfg.DBURL)
	require.Equal(t, "redis", cfg.KV.Backend)
	require.Equal(t, "cache:6380", cfg.Redis.Address)
}

func TestLoad_BadBackend(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/nutritionist")
	t.Setenv("KV_BACKEND", "etcd")

	_, err := Load("")
	require.Error(t, err)
}
