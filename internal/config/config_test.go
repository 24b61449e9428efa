//go:build !integration && !e2e

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "soriva-router.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Second, cfg.Snapshot.RefreshInterval)
	assert.Equal(t, 1000, cfg.Metrics.Capacity)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "metrics capacity",
			mutate:  func(c *Config) { c.Metrics.Capacity = 0 },
			wantErr: "metrics.capacity",
		},
		{
			name:    "snapshot interval too short",
			mutate:  func(c *Config) { c.Snapshot.RefreshInterval = 100 * time.Millisecond },
			wantErr: "snapshot.refresh_interval",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SORIVA_ROUTER_PORT", "9999")
	t.Setenv("SORIVA_ROUTER_DB", "/tmp/test.db")
	t.Setenv("SORIVA_ROUTER_SNAPSHOT_INTERVAL", "45s")
	t.Setenv("SORIVA_ROUTER_METRICS_CAPACITY", "250")
	t.Setenv("SORIVA_ROUTER_LOG_COMPRESS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 45*time.Second, cfg.Snapshot.RefreshInterval)
	assert.Equal(t, 250, cfg.Metrics.Capacity)
	assert.False(t, cfg.LogRotation.Compress)
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("SORIVA_ROUTER_PORT", "not-a-number")
	t.Setenv("SORIVA_ROUTER_SNAPSHOT_INTERVAL", "garbage")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Snapshot.RefreshInterval)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("SORIVA_ROUTER_METRICS_CAPACITY", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics.capacity")
}
