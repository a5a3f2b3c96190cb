package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the gateway configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	LogLevel string // debug, info, warn, error

	// Engine
	AnthropicKey string
	Model        string
	SystemPrompt string
	MaxSteps     int
	Timeout      time.Duration // 0 means no execution time limit

	// Tooling
	ServersPath string
	Workspace   string
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := &Config{
		Port:         getEnvOrDefault("AGENTGATE_PORT", "8000"),
		LogLevel:     getEnvOrDefault("AGENTGATE_LOG_LEVEL", "info"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:        os.Getenv("AGENTGATE_MODEL"),
		SystemPrompt: os.Getenv("AGENTGATE_SYSTEM_PROMPT"),
		MaxSteps:     getEnvIntOrDefault("AGENTGATE_MAX_STEPS", 25),
		Timeout:      getEnvDurationOrDefault("AGENTGATE_TIMEOUT", 0),
		ServersPath:  getEnvOrDefault("AGENTGATE_SERVERS", "servers.yaml"),
		Workspace:    getEnvOrDefault("AGENTGATE_WORKSPACE", "."),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.AnthropicKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
