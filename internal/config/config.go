// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/mailcast/mailcast/internal/auth"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Storage: file (legacy JSON documents), postgres or redis
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir        string `env:"DATA_DIR" envDefault:"data"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL"`

	// Mail transport: smtp, ses, postmark or outbox
	MailTransport     string        `env:"MAIL_TRANSPORT" envDefault:"smtp"`
	SMTPHost          string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort          int           `env:"SMTP_PORT" envDefault:"465"`
	SMTPTLSSkipVerify bool          `env:"SMTP_TLS_SKIP_VERIFY" envDefault:"false"`
	SESRegion         string        `env:"SES_REGION" envDefault:"us-east-1"`
	SESAccessKeyID    string        `env:"SES_ACCESS_KEY_ID"`
	SESSecretKey      string        `env:"SES_SECRET_ACCESS_KEY"`
	MailOutboxDir     string        `env:"MAIL_OUTBOX_DIR" envDefault:"outbox"`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`

	// Admin registration gate. Argon2id PHC hash; empty leaves the
	// registration route open.
	AdminTokenHash string `env:"ADMIN_TOKEN_HASH"`

	// CORS configuration for the admin route
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:4000"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

var (
	validBackends   = []string{"file", "postgres", "redis"}
	validTransports = []string{"smtp", "ses", "postmark", "outbox"}
	validFormats    = []string{"json", "text"}
)

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AdminGateEnabled reports whether registration requires an admin token.
func (c *Config) AdminGateEnabled() bool {
	return c.AdminTokenHash != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if !contains(validBackends, c.StorageBackend) {
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of %v, got %q", validBackends, c.StorageBackend))
	}
	switch c.StorageBackend {
	case "file":
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the file backend"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	}

	if !contains(validTransports, c.MailTransport) {
		errs = append(errs, fmt.Errorf("MAIL_TRANSPORT must be one of %v, got %q", validTransports, c.MailTransport))
	}
	if c.MailTransport == "smtp" && (c.SMTPPort <= 0 || c.SMTPPort > 65535) {
		errs = append(errs, fmt.Errorf("SMTP_PORT out of range: %d", c.SMTPPort))
	}

	if !contains(validFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of %v, got %q", validFormats, c.LogFormat))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, errors.New("SEND_TIMEOUT must be positive"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	if c.AdminTokenHash != "" {
		if err := auth.ValidateHash(c.AdminTokenHash); err != nil {
			errs = append(errs, fmt.Errorf("ADMIN_TOKEN_HASH is not a usable argon2id hash: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, parses environment variables and
// validates the result. Variables already set in the environment win over
// the .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
