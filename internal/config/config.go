// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	Password    string

	DBPath      string
	HistoryPath string
	PromptsPath string // optional YAML prompt overrides

	SessionTTL        time.Duration
	MaxClarifications int

	Gateway GatewayConfig
}

// GatewayConfig controls the AI gateway client.
type GatewayConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	timeoutSec := getEnvInt("GATEWAY_TIMEOUT_SECONDS", 30)
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	ttlMin := getEnvInt("SESSION_TTL_MINUTES", 60)
	if ttlMin <= 0 {
		ttlMin = 60
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", ""),
		Password:          getEnv("APP_PASSWORD", ""),
		DBPath:            getEnv("DB_PATH", "./data/promptdesk.db"),
		HistoryPath:       getEnv("HISTORY_PATH", "./data/prompts.csv"),
		PromptsPath:       getEnv("PROMPTS_PATH", ""),
		SessionTTL:        time.Duration(ttlMin) * time.Minute,
		MaxClarifications: getEnvInt("MAX_CLARIFICATIONS", 5),
		Gateway: GatewayConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("DEFAULT_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("GATEWAY_TEMPERATURE", 0.3),
			MaxTokens:   getEnvInt("GATEWAY_MAX_TOKENS", 900),
			Timeout:     time.Duration(timeoutSec) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
// A missing gateway credential is deliberately not an error: the
// process must start without it and fail per-call instead.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("APP_PASSWORD cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.HistoryPath == "" {
		return fmt.Errorf("HISTORY_PATH cannot be empty")
	}
	if c.MaxClarifications <= 0 {
		return fmt.Errorf("MAX_CLARIFICATIONS must be > 0")
	}
	if c.Gateway.Model == "" {
		return fmt.Errorf("DEFAULT_MODEL cannot be empty")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
