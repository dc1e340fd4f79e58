package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadPathDefaults(t *testing.T) {
	path := writeConfig(t, `env: "dev"`)

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, InventoryDriverStore, cfg.Inventory.Driver)
	assert.Equal(t, NotifyDriverLog, cfg.Notify.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, time.Duration(0), cfg.Credential.TTL)
	assert.Equal(t, time.Minute, cfg.Audit.Interval)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
}

func TestLoadPathOverrides(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
storage:
  driver: "bolt"
inventory:
  driver: "redis"
credential:
  ttl: 72h
http_server:
  address: ":9090"
  timeout: 2s
`)

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverBolt, cfg.Storage.Driver)
	assert.Equal(t, InventoryDriverRedis, cfg.Inventory.Driver)
	assert.Equal(t, 72*time.Hour, cfg.Credential.TTL)
	assert.Equal(t, ":9090", cfg.HTTPServer.Address)
	assert.Equal(t, 2*time.Second, cfg.HTTPServer.Timeout)
}

func TestLoadPathRejectsUnknownDrivers(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "storage", body: "storage:\n  driver: \"mysql\"\n"},
		{name: "inventory", body: "inventory:\n  driver: \"memcached\"\n"},
		{name: "notify", body: "notify:\n  driver: \"smtp\"\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadPath(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadPathRejectsNonPositiveDurations(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "credential ttl", body: "credential:\n  ttl: -1h\n"},
		{name: "audit interval", body: "audit:\n  interval: -1s\n"},
		{name: "notify timeout", body: "notify:\n  timeout: -5s\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadPath(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateRejectsZeroDurations(t *testing.T) {
	cfg, err := LoadPath(writeConfig(t, `env: "dev"`))
	require.NoError(t, err)

	noAudit := *cfg
	noAudit.Audit.Interval = 0
	assert.Error(t, noAudit.validate())

	noTimeout := *cfg
	noTimeout.Notify.Timeout = 0
	assert.Error(t, noTimeout.validate())

	assert.NoError(t, cfg.validate())
}

func TestLoadPathMissingFile(t *testing.T) {
	_, err := LoadPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMustLoadPathPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
