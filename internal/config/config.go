// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for the results database (always absolute)
	Port        int
	LogLevel    string
	DevMode     bool
	MaxQubits   int           // Upper bound on register width per session
	SamplerSeed int64         // 0 means seed from the clock at startup
	SessionTTL  time.Duration // Idle sessions older than this are purged
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("QSIM_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		Port:        getEnvAsInt("QSIM_PORT", 8001),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		MaxQubits:   getEnvAsInt("QSIM_MAX_QUBITS", 20),
		SamplerSeed: int64(getEnvAsInt("QSIM_SAMPLER_SEED", 0)),
		SessionTTL:  getEnvAsDuration("QSIM_SESSION_TTL", 30*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.MaxQubits < 1 {
		return fmt.Errorf("QSIM_MAX_QUBITS must be at least 1, got %d", c.MaxQubits)
	}
	// 2^26 complex128 amplitudes is 1GB; anything beyond is a misconfiguration.
	if c.MaxQubits > 26 {
		return fmt.Errorf("QSIM_MAX_QUBITS must be at most 26, got %d", c.MaxQubits)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("QSIM_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
