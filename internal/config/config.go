package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" required:"true"`

	// Authentication
	JWTSecret      string        `env:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" default:"24h"`
	AdminKeyHash   string        `env:"ADMIN_KEY_HASH"`

	// Redis Cache
	RedisURL      string        `env:"REDIS_URL" default:"redis://redis:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" default:"1h"`

	// Invite economy
	InviteUsageLimit    int           `env:"INVITE_USAGE_LIMIT" default:"1"`
	InviteCodeTTL       time.Duration `env:"INVITE_CODE_TTL" default:"720h"`
	InitialInviteQuota  int           `env:"INITIAL_INVITE_QUOTA" default:"0"`
	InviteRatePerSecond float64       `env:"INVITE_RATE_PER_SECOND" default:"1"`
	InviteRateBurst     int           `env:"INVITE_RATE_BURST" default:"5"`

	// Background work
	TaskTimeout    time.Duration `env:"TASK_TIMEOUT" default:"10s"`
	RepairSchedule string        `env:"REPAIR_SCHEDULE" default:"@daily"`

	// Monitoring
	MetricsEnabled bool `env:"METRICS_ENABLED" default:"true"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" default:"json"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine; system env vars still apply.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.AdminKeyHash, "ADMIN_KEY_HASH", ""); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", "redis://redis:6379"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.CacheTTL, "CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	// Invite economy
	if err := loadEnvInt(&config.InviteUsageLimit, "INVITE_USAGE_LIMIT", 1); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.InviteCodeTTL, "INVITE_CODE_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.InitialInviteQuota, "INITIAL_INVITE_QUOTA", 0); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.InviteRatePerSecond, "INVITE_RATE_PER_SECOND", 1); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.InviteRateBurst, "INVITE_RATE_BURST", 5); err != nil {
		return nil, err
	}

	// Background work
	if err := loadEnvDuration(&config.TaskTimeout, "TASK_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RepairSchedule, "REPAIR_SCHEDULE", "@daily"); err != nil {
		return nil, err
	}

	// Monitoring
	if err := loadEnvBool(&config.MetricsEnabled, "METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "json"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"}); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"console", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	if c.InviteUsageLimit < 1 {
		errors = append(errors, "INVITE_USAGE_LIMIT must be at least 1")
	}
	if c.InviteCodeTTL < 0 {
		errors = append(errors, "INVITE_CODE_TTL must not be negative")
	}
	if c.InitialInviteQuota < 0 {
		errors = append(errors, "INITIAL_INVITE_QUOTA must not be negative")
	}
	if c.InviteRatePerSecond <= 0 || c.InviteRateBurst < 1 {
		errors = append(errors, "INVITE_RATE_PER_SECOND and INVITE_RATE_BURST must be positive")
	}
	if c.TaskTimeout <= 0 {
		errors = append(errors, "TASK_TIMEOUT must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		errors = append(errors, "CORS_ORIGINS must list at least one origin or *")
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			continue
		}
		if strings.Contains(origin, "*") || !(strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")) {
			errors = append(errors, fmt.Sprintf("CORS_ORIGINS entry %q must be * or an http(s) origin", origin))
		}
	}
	if !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		errors = append(errors, "REDIS_URL must be a redis:// or rediss:// URL")
	}
	if c.IsProduction() && c.AdminKeyHash == "" {
		errors = append(errors, "ADMIN_KEY_HASH is required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
