package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.Equal(t, "navegante.db", filepath.Base(cfg.Database.Path))
	assert.Equal(t, "data", filepath.Base(filepath.Dir(cfg.Database.Path)))
	assert.False(t, cfg.Remote.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "navegante.yaml", `
database:
  path: store/app.db
log:
  level: debug
  format: json
http:
  addr: 127.0.0.1:9000
remote:
  enabled: true
  project_url: https://abc.supabase.co
  timeout: 3s
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "store", "app.db"), cfg.Database.Path)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "secciones_navegante", cfg.Remote.SectionsTable, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(dir, ".env"), cfg.Remote.EnvFile)
}

func TestLoad_MemoryDatabaseStaysUnresolved(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "database:\n  path: \":memory:\"\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.Path)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":          "databse:\n  path: x.db\n",
		"bad log level":        "log:\n  level: loud\n",
		"bad format":           "log:\n  format: xml\n",
		"addr without port":    "http:\n  addr: localhost\n",
		"remote without url":   "remote:\n  enabled: true\n",
		"remote non-http url":  "remote:\n  enabled: true\n  project_url: ftp://x\n",
		"negative rate":        "remote:\n  requests_per_second: -1\n",
		"empty products table": "remote:\n  products_table: \"\"\n",
		"malformed yaml":       "log: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.yaml", content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRemoteAPIKey_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "NAVEGANTE_TEST_KEY=from-file\n")
	t.Setenv("NAVEGANTE_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("NAVEGANTE_TEST_KEY"))

	key, err := RemoteConfig{APIKeyEnv: "NAVEGANTE_TEST_KEY", EnvFile: envFile}.APIKey()

	require.NoError(t, err)
	assert.Equal(t, "from-file", key)
}

func TestRemoteAPIKey_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "NAVEGANTE_TEST_KEY2=from-file\n")
	t.Setenv("NAVEGANTE_TEST_KEY2", "from-env")

	key, err := RemoteConfig{APIKeyEnv: "NAVEGANTE_TEST_KEY2", EnvFile: envFile}.APIKey()

	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestRemoteAPIKey_Missing(t *testing.T) {
	t.Setenv("NAVEGANTE_TEST_KEY3", "")

	_, err := RemoteConfig{APIKeyEnv: "NAVEGANTE_TEST_KEY3", EnvFile: filepath.Join(t.TempDir(), "none.env")}.APIKey()

	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
}
