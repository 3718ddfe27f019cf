// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds runtime limits for long simulation runs, read from
// the environment so deployments can tune them without editing battle files.
type EnvironmentConfig struct {
	MaxMemoryMB           int64
	MaxGoroutines         int
	ShutdownTimeout       time.Duration
	ResourceCheckInterval time.Duration
}

// Environment variable names and defaults
const (
	envMaxMemoryMB   = "ARMADA_MAX_MEMORY_MB"
	envMaxGoroutines = "ARMADA_MAX_GOROUTINES"
	envShutdownWait  = "ARMADA_SHUTDOWN_TIMEOUT"
	envCheckInterval = "ARMADA_RESOURCE_CHECK_INTERVAL"

	defaultMaxMemoryMB   = 500
	defaultMaxGoroutines = 1000
	defaultShutdownWait  = 30 * time.Second
	defaultCheckInterval = 10 * time.Second
)

// LoadConfigFromEnv builds an EnvironmentConfig from the process environment,
// falling back to safe defaults for unset variables. Malformed values are
// load-time errors, not silently ignored.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{
		MaxMemoryMB:           defaultMaxMemoryMB,
		MaxGoroutines:         defaultMaxGoroutines,
		ShutdownTimeout:       defaultShutdownWait,
		ResourceCheckInterval: defaultCheckInterval,
	}

	if v := os.Getenv(envMaxMemoryMB); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s: invalid value %q", envMaxMemoryMB, v)
		}
		cfg.MaxMemoryMB = n
	}

	if v := os.Getenv(envMaxGoroutines); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s: invalid value %q", envMaxGoroutines, v)
		}
		cfg.MaxGoroutines = n
	}

	if v := os.Getenv(envShutdownWait); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: invalid duration %q", envShutdownWait, v)
		}
		cfg.ShutdownTimeout = d
	}

	if v := os.Getenv(envCheckInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: invalid duration %q", envCheckInterval, v)
		}
		cfg.ResourceCheckInterval = d
	}

	return cfg, nil
}
