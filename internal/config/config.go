package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is built once at startup and passed to the components that need it.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"taskz"`
	ServerAddr  string `env:"SERVER_ADDR" envDefault:":8080"`
	GinMode     string `env:"GIN_MODE" envDefault:"debug"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Database DatabaseConfig
	Auth     AuthConfig

	// LoginRateLimit uses the ulule formatted rate ("20-M"). Empty disables throttling.
	LoginRateLimit string `env:"LOGIN_RATE_LIMIT" envDefault:"20-M"`
}

type DatabaseConfig struct {
	Driver   string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	URL      string `env:"DATABASE_URL" envDefault:"host=localhost port=5432 user=postgres password=postgres dbname=taskz sslmode=disable"`
	LogLevel string `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"60m"`
	Strategy   string        `env:"AUTH_STRATEGY" envDefault:"role"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	switch c.Auth.Strategy {
	case "role", "tenant":
	default:
		return fmt.Errorf("unknown AUTH_STRATEGY %q (want role or tenant)", c.Auth.Strategy)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
