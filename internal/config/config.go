// Package config provides configuration management with 2-tier priority:
// Environment variables > Default values
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Snapshot    SnapshotConfig
	Metrics     MetricsConfig
	Quality     QualityConfig
	LogRotation LogRotationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string
}

// SnapshotConfig controls the kill-switch snapshot refresh loop.
type SnapshotConfig struct {
	RefreshInterval time.Duration
}

// MetricsConfig controls the fallback metrics aggregator.
type MetricsConfig struct {
	Capacity      int
	FlushInterval time.Duration
}

// QualityConfig controls the hot-reloadable quality score table.
type QualityConfig struct {
	OverrideFile string // optional YAML file, watched when set
}

// LogRotationConfig holds log rotation settings powered by lumberjack.
type LogRotationConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8090,
			LogLevel: "INFO",
		},
		Database: DatabaseConfig{
			Path: "soriva-router.db",
		},
		Snapshot: SnapshotConfig{
			RefreshInterval: 15 * time.Second,
		},
		Metrics: MetricsConfig{
			Capacity:      1000,
			FlushInterval: 30 * time.Second,
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Metrics.Capacity < 1 {
		return &ConfigError{Field: "metrics.capacity", Message: "must be at least 1"}
	}
	if c.Snapshot.RefreshInterval < time.Second {
		return &ConfigError{Field: "snapshot.refresh_interval", Message: "must be at least 1s"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + ": " + e.Message
}

// Helper functions for environment variable parsing.

func getEnvStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	lower := strings.ToLower(v)
	return lower == "true" || lower == "1" || lower == "yes" || lower == "on"
}
