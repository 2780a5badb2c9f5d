package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the API server and CLI.
type Config struct {
	Port    string
	GinMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret   string
	CORSOrigins []string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	NATSURL       string

	DiscordWebhookURL string
	DiscordPublicKey  string
	IFAPIKey          string
	SimBriefAPIKey    string

	ResendAPIKey string
	EmailFrom    string

	MaintenanceSchedule string
}

const devJWTSecret = "default_super_secret_key"

// Load reads configs/.env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		NATSURL:       os.Getenv("NATS_URL"),

		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		DiscordPublicKey:  os.Getenv("DISCORD_PUBLIC_KEY"),
		IFAPIKey:          os.Getenv("IF_API_KEY"),
		SimBriefAPIKey:    os.Getenv("SIMBRIEF_API_KEY"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "Operations <ops@example.com>"),

		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "@every 1m"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsRelease() {
			return nil, errors.New("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWTSecret = devJWTSecret // development fallback only
	}

	return cfg, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// DSN builds the postgres connection URL.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSslMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
