package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, base string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o600))
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CONFIG_ENV", "test")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "server:\n  port: \"\"\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, time.Minute, cfg.DedupTTL())
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "BIM", cfg.App.Name)
	assert.Empty(t, cfg.App.DashboardURL)
}

func TestLoadAppSection(t *testing.T) {
	writeConfig(t, "app:\n  name: Site Desk\n  dashboard_url: https://bim.example.com/dashboard\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Site Desk", cfg.App.Name)
	assert.Equal(t, "https://bim.example.com/dashboard", cfg.App.DashboardURL)

	t.Setenv("APP_DASHBOARD_URL", "https://ops.example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://ops.example.com", cfg.App.DashboardURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := writeConfig(t, "store:\n  driver: memory\nmongo:\n  uri: mongodb://localhost:27017\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte("server:\n  port: \"9000\"\n"), 0o600))
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("DEDUP_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, 2*time.Minute, cfg.DedupTTL())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{Store: StoreConfig{Driver: DriverMemory}}).Validate())
	assert.Error(t, (&Config{Store: StoreConfig{Driver: DriverPostgres}}).Validate())
	assert.Error(t, (&Config{Store: StoreConfig{Driver: DriverMongo}}).Validate())
	assert.Error(t, (&Config{Store: StoreConfig{Driver: "sqlite"}}).Validate())
}
