package config

import (
	"os"
	"strconv"
	"time"

	"ideaverse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	AI        AIConfig
	Server    ServerConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AIConfig holds completion endpoint settings
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	PromptsDir  string
	Locale      string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ProfilingConfig holds the ops/debug server settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		AI: AIConfig{
			APIKey:      os.Getenv("DEEPSEEK_API_KEY"),
			BaseURL:     getEnvOrDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			Model:       getEnvOrDefault("LLM_MODEL", "deepseek-chat"),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
			Timeout:     getEnvDurationOrDefault("AI_TIMEOUT", 180*time.Second),
			PromptsDir:  getEnvOrDefault("PROMPTS_DIR", "./prompts"),
			Locale:      getEnvOrDefault("LOCALE", "en-US"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
		},
	}

	if config.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.AI.APIKey == "" {
		return nil, errors.ConfigInvalid("DEEPSEEK_API_KEY is required")
	}
	if config.AI.PromptsDir == "" {
		return nil, errors.ConfigInvalid("prompts directory is required")
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
