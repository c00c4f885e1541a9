// Package config provides application configuration loading from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"dev"`
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Mail     MailConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port           string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	FrontendURL    string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	// Host patterns allowed to open live notification sessions.
	WSOriginPatterns []string `env:"WS_ORIGIN_PATTERNS" envSeparator:"," envDefault:"localhost:3000"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string `env:"DB_HOST,required,notEmpty"`
	Port         string `env:"DB_PORT,required,notEmpty"`
	User         string `env:"DB_USER,required,notEmpty"`
	Password     string `env:"DB_PASSWORD,required,notEmpty"`
	DBName       string `env:"DB_NAME,required,notEmpty"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ApplySchema  bool   `env:"DB_APPLY_SCHEMA" envDefault:"true"`
}

// AuthConfig contains identity token settings.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

// PaymentConfig contains payment provider settings.
type PaymentConfig struct {
	StripeSecretKey string        `env:"STRIPE_SECRET_KEY"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
}

// MailConfig contains out-of-band messaging settings.
type MailConfig struct {
	APIKey    string `env:"MAILERSEND_API_KEY"`
	FromEmail string `env:"MAIL_FROM_EMAIL" envDefault:"no-reply@example.com"`
	FromName  string `env:"MAIL_FROM_NAME" envDefault:"Delivery Team"`
}

// Load reads configuration from the environment, after loading an optional .env file.
// Returns error if required variables are not set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Payment.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

// DSN returns PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
