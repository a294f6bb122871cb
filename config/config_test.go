package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp переводит тест в пустой каталог, чтобы не подхватить чужой config.yaml
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range []string{"APP_ENV", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_DSN", "HTTP_PORT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	chdirTemp(t)

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "svc")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "svc", cfg.Database.Username)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := chdirTemp(t)

	content := []byte("database:\n  driver: sqlite\n  dsn: local.db\nhttp:\n  port: 7000\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local.db", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.HTTP.Port)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := LoadConfig()
	assert.Error(t, err)
}
