package config

import (
	"fmt"
	"os"
	"strings"
)

// Load loads configuration: defaults first, then environment overrides.
// A .env file in the working directory is applied before the environment
// is read, without clobbering variables that are already set.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a .env file from the working directory if present.
func loadDotEnv() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // .env file is optional
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	cfg.Server.Host = getEnvStr("SORIVA_ROUTER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SORIVA_ROUTER_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnvStr("LOG_LEVEL", cfg.Server.LogLevel)

	cfg.Database.Path = getEnvStr("SORIVA_ROUTER_DB", cfg.Database.Path)

	cfg.Snapshot.RefreshInterval = getEnvDuration("SORIVA_ROUTER_SNAPSHOT_INTERVAL", cfg.Snapshot.RefreshInterval)

	cfg.Metrics.Capacity = getEnvInt("SORIVA_ROUTER_METRICS_CAPACITY", cfg.Metrics.Capacity)
	cfg.Metrics.FlushInterval = getEnvDuration("SORIVA_ROUTER_METRICS_FLUSH_INTERVAL", cfg.Metrics.FlushInterval)

	cfg.Quality.OverrideFile = getEnvStr("SORIVA_ROUTER_QUALITY_FILE", cfg.Quality.OverrideFile)

	cfg.LogRotation.MaxSizeMB = getEnvInt("SORIVA_ROUTER_LOG_MAX_SIZE_MB", cfg.LogRotation.MaxSizeMB)
	cfg.LogRotation.MaxBackups = getEnvInt("SORIVA_ROUTER_LOG_MAX_BACKUPS", cfg.LogRotation.MaxBackups)
	cfg.LogRotation.MaxAgeDays = getEnvInt("SORIVA_ROUTER_LOG_MAX_AGE_DAYS", cfg.LogRotation.MaxAgeDays)
	cfg.LogRotation.Compress = getEnvBool("SORIVA_ROUTER_LOG_COMPRESS", cfg.LogRotation.Compress)
}
