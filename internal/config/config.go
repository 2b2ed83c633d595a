package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB       DatabaseConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Resend   ResendConfig
	Featured FeaturedConfig
	Worker   WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StripeConfig contains API keys and the webhook signing secret for Stripe.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// ResendConfig contains credentials for the Resend email API.
type ResendConfig struct {
	APIKey      string
	FromAddress string
}

// FeaturedConfig contains featured-slot business parameters.
type FeaturedConfig struct {
	SlotDuration    time.Duration // how long an activated slot runs
	ReservationHold time.Duration // how long capacity is held pending payment
	ReminderWindows []int         // days before expiry to send warnings
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	ReminderInterval           time.Duration
	SlotExpiryInterval         time.Duration
	ReservationCleanupInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Stripe
	cfg.Stripe = StripeConfig{
		SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "https://suburbmates.com.au/featured/success"),
		CancelURL:     getEnv("STRIPE_CANCEL_URL", "https://suburbmates.com.au/featured/cancel"),
	}

	// Resend (transactional email)
	cfg.Resend = ResendConfig{
		APIKey:      getEnv("RESEND_API_KEY", ""),
		FromAddress: getEnv("RESEND_FROM", "SuburbMates <noreply@suburbmates.com.au>"),
	}

	// Featured slots
	var err error
	if cfg.Featured.SlotDuration, err = parseDurationEnv("FEATURED_SLOT_DURATION", "720h"); err != nil {
		return nil, fmt.Errorf("invalid FEATURED_SLOT_DURATION: %w", err)
	}
	if cfg.Featured.ReservationHold, err = parseDurationEnv("FEATURED_RESERVATION_HOLD", "30m"); err != nil {
		return nil, fmt.Errorf("invalid FEATURED_RESERVATION_HOLD: %w", err)
	}
	cfg.Featured.ReminderWindows = []int{
		getEnvInt("FEATURED_REMINDER_WINDOW_1", 7),
		getEnvInt("FEATURED_REMINDER_WINDOW_2", 2),
	}

	// Workers (durations)
	if cfg.Worker.ReminderInterval, err = parseDurationEnv("REMINDER_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL: %w", err)
	}
	if cfg.Worker.SlotExpiryInterval, err = parseDurationEnv("SLOT_EXPIRY_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid SLOT_EXPIRY_INTERVAL: %w", err)
	}
	if cfg.Worker.ReservationCleanupInterval, err = parseDurationEnv("RESERVATION_CLEANUP_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid RESERVATION_CLEANUP_INTERVAL: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
