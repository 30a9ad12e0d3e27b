package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	util "hikvision-integration/pkg/utils"
)

type AppConfig struct {
	Port           string
	CompaniesFile  string
	DataDir        string
	MongoString    string
	MongoDatabase  string
	RedisURL       string
	PasetoSecret   string
	LogLevel       string
	BitrixTimeout  time.Duration
	AllowedOrigins []string
}

// LoadConfig loads configuration from the environment, reading .env first
// when present.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	timeout, err := time.ParseDuration(getEnv("BITRIX_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("BITRIX_TIMEOUT: %w", err)
	}

	cfg := &AppConfig{
		Port:           getEnv("PORT", "3000"),
		CompaniesFile:  getEnv("COMPANIES_FILE", "companies.json"),
		DataDir:        getEnv("DATA_DIR", "data"),
		MongoString:    getEnv("MONGOSTRING", ""),
		MongoDatabase:  getEnv("MONGO_DATABASE", "hikvision-integration"),
		RedisURL:       getEnv("REDIS_URL", ""),
		PasetoSecret:   getEnv("PASETO_SECRET", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		BitrixTimeout:  timeout,
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
	}
	if cfg.PasetoSecret != "" {
		if _, err := cfg.PasetoKey(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// PasetoKey decodes PASETO_SECRET. URL-safe base64 is expected; standard
// base64 is accepted as well.
func (c *AppConfig) PasetoKey() ([]byte, error) {
	if c.PasetoSecret == "" {
		return nil, fmt.Errorf("PASETO_SECRET is not set")
	}
	key, err := util.DecodeBase64Key(c.PasetoSecret)
	if err != nil {
		return nil, fmt.Errorf("PASETO_SECRET: %w", err)
	}
	return key, nil
}

// Helper function to get environment variable or fallback to default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
