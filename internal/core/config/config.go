package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	LimitsAPIURL   string
	LimitsAPIKey   string
	PaymentsAPIURL string
	PaymentsAPIKey string
	WebhookURL     string
	WebhookSecret  string
	SessionTTL     time.Duration
	Env            string
}

// LoadConfig reads .env and returns a Config struct.
func LoadConfig() *Config {
	// .env might not exist in production, which is fine.
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		Port:           getEnv("PORT", "3000"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LimitsAPIURL:   getEnv("LIMITS_API_URL", "http://localhost:8081"),
		LimitsAPIKey:   getEnv("LIMITS_API_KEY", ""),
		PaymentsAPIURL: getEnv("PAYMENTS_API_URL", "http://localhost:8082"),
		PaymentsAPIKey: getEnv("PAYMENTS_API_KEY", ""),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		Env:            getEnv("ENV", "development"),
	}
}

// Helper to get env with a default fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Ignoring non-numeric env value", "key", key)
	}
	return fallback
}
