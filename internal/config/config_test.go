package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7071, cfg.Server.Port)
	assert.Equal(t, "localhost:7071", cfg.Server.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://localhost:7071/api", cfg.API.BaseURL)
	assert.Equal(t, 20, cfg.API.MaxRequestsPerSecond)
	assert.Equal(t, "logbook:ref:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logbook.yaml")
	content := []byte(`
server:
  port: 9000
api:
  base_url: https://example.test/api
database:
  name: climbs
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("LOGBOOK_DATABASE_NAME", "from_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://example.test/api", cfg.API.BaseURL)
	assert.Equal(t, "from_env", cfg.Database.Name)
	assert.Contains(t, cfg.Database.DSN(), "dbname=from_env")
}

func TestAuthConfig_UsesDefaultSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Auth.UsesDefaultSecret())
	assert.True(t, AuthConfig{}.UsesDefaultSecret())

	t.Setenv("LOGBOOK_AUTH_SECRET", "s3cret-from-env")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-from-env", cfg.Auth.Secret)
	assert.False(t, cfg.Auth.UsesDefaultSecret())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, ConfigureLogging(LogConfig{Level: "debug", Format: "json"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.Error(t, ConfigureLogging(LogConfig{Level: "loud"}))
	assert.Error(t, ConfigureLogging(LogConfig{Level: "info", Format: "xml"}))

	log.SetFormatter(&log.TextFormatter{})
}
