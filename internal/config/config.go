// Package config loads service configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Gemini   GeminiConfig
	Advisory AdvisoryConfig
}

type ServerConfig struct {
	Port           string
	SkipAuth       bool
	AllowedOrigins []string
}

type StoreConfig struct {
	UseMemory bool
	ProjectID string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type AdvisoryConfig struct {
	// DefaultWeeklyBudget applies when a request does not carry an explicit
	// budget. Must be positive; pacing computations reject non-positive budgets.
	DefaultWeeklyBudget float64
}

// Load reads configuration from the environment. A .env file in the working
// directory or a parent is applied first if present; real environment
// variables win, which keeps Docker/Cloud Run deployments untouched.
func Load() (*Config, error) {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	budget, err := strconv.ParseFloat(getEnv("DEFAULT_WEEKLY_BUDGET", "500"), 64)
	if err != nil || budget <= 0 {
		budget = 500
	}

	origins := []string{
		getEnv("FRONTEND_ORIGIN", "http://localhost:1234"),
		"http://127.0.0.1:1234",
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8111"),
			SkipAuth:       getEnv("SKIP_AUTH", "") == "true",
			AllowedOrigins: origins,
		},
		Store: StoreConfig{
			UseMemory: getEnv("USE_MEMORY_STORE", "") == "true" || getEnv("ENV", "") == "local",
			ProjectID: getEnv("GOOGLE_CLOUD_PROJECT", ""),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Advisory: AdvisoryConfig{
			DefaultWeeklyBudget: budget,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
