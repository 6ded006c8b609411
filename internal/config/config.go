package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// HTTP
	HTTPHost       string        `env:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort       int           `env:"HTTP_PORT" default:"8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"5s"`

	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" default:"recipes.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" default:"10"`
	DBLogSQL       bool   `env:"DB_LOG_SQL" default:"false"`

	// Redis (rate limiting backend)
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"20"`

	// Authentication (write routes only)
	AuthEnabled bool   `env:"AUTH_ENABLED" default:"false"`
	JWTSecret   string `env:"JWT_SECRET"`

	// Monitoring
	MetricsEnabled bool `env:"METRICS_ENABLED" default:"true"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*"`
}

// LoadConfig loads configuration from an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom is LoadConfig with an explicit env file path. A missing file is not an error.
func LoadConfigFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}

	// HTTP
	if err := loadEnvString(&config.HTTPHost, "HTTP_HOST", "0.0.0.0"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8000); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.RequestTimeout, "REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvString(&config.DatabaseDriver, "DATABASE_DRIVER", DriverSQLite); err != nil {
		return nil, err
	}
	config.DatabaseDriver = strings.ToLower(config.DatabaseDriver)
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", "recipes.db"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if err := loadEnvBool(&config.DBLogSQL, "DB_LOG_SQL", false); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}

	// Rate limiting
	if err := loadEnvFloat(&config.RateLimitRPS, "RATE_LIMIT_RPS", 0); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.RateLimitBurst, "RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvBool(&config.AuthEnabled, "AUTH_ENABLED", false); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.JWTSecret, "JWT_SECRET", ""); err != nil {
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
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"*"}); err != nil {
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
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, v := range parts {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		*target = out
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
	if c.RequestTimeout <= 0 {
		errors = append(errors, "REQUEST_TIMEOUT must be positive")
	}

	validDrivers := []string{DriverSQLite, DriverPostgres}
	if !contains(validDrivers, c.DatabaseDriver) {
		errors = append(errors, fmt.Sprintf("DATABASE_DRIVER must be one of: %s", strings.Join(validDrivers, ", ")))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errors = append(errors, "DATABASE_URL is required")
	}
	if c.DBMaxOpenConns < 1 {
		errors = append(errors, "DB_MAX_OPEN_CONNS must be at least 1")
	}

	if c.RateLimitRPS < 0 {
		errors = append(errors, "RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errors = append(errors, "RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}

	// JWT secret length only matters once writes are protected
	if c.AuthEnabled && len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long when AUTH_ENABLED is true")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
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

// HTTPAddr is the listen address for the API server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// RateLimitEnabled reports whether requests should be throttled at all.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
