package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	defaultJWTSecret = "safetravels-development-secret"
)

// Config is read from the process environment. Keys are the lower-cased
// environment variable names, e.g. RATE_LIMIT_WINDOW -> rate_limit_window.
type Config struct {
	Environment string `koanf:"environment" validate:"required,oneof=development production test"`
	Port        string `koanf:"port" validate:"required"`

	DatabaseDriver string `koanf:"database_driver" validate:"required,oneof=mysql postgres"`
	DatabaseURL    string `koanf:"database_url" validate:"required"`
	SeedDatabase   bool   `koanf:"seed_database"`

	JWTSecret               string        `koanf:"jwt_secret" validate:"required,min=16"`
	JWTExpiry               time.Duration `koanf:"jwt_expiry" validate:"required,gt=0"`
	AllowPublicRegistration bool          `koanf:"allow_public_registration"`
	FrontendURL             string        `koanf:"frontend_url" validate:"required,url"`

	// Uploads
	StorageDriver  string `koanf:"storage_driver" validate:"required,oneof=local minio"`
	UploadDir      string `koanf:"upload_dir" validate:"required"`
	MaxFileSize    int64  `koanf:"max_file_size" validate:"gt=0"`
	MinioEndpoint  string `koanf:"minio_endpoint" validate:"required_if=StorageDriver minio"`
	MinioAccessKey string `koanf:"minio_access_key" validate:"required_if=StorageDriver minio"`
	MinioSecretKey string `koanf:"minio_secret_key" validate:"required_if=StorageDriver minio"`
	MinioBucket    string `koanf:"minio_bucket" validate:"required_if=StorageDriver minio"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`
	MinioPublicURL string `koanf:"minio_public_url" validate:"required_if=StorageDriver minio"`

	RateLimitWindow      time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitMaxRequests int           `koanf:"rate_limit_max_requests" validate:"gt=0"`

	// Email Configuration
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	FromEmail    string `koanf:"from_email" validate:"omitempty,email"`
	FromName     string `koanf:"from_name"`
	NotifyEmail  string `koanf:"notify_email" validate:"omitempty,email"`

	CleanupInterval    time.Duration `koanf:"cleanup_interval" validate:"gte=0"`
	CleanupGracePeriod time.Duration `koanf:"cleanup_grace_period" validate:"gte=0"`

	LogLevel string `koanf:"log_level" validate:"required,oneof=trace debug info warn error"`
}

func defaults() *Config {
	return &Config{
		Environment:          EnvDevelopment,
		Port:                 "5000",
		DatabaseDriver:       "mysql",
		DatabaseURL:          "root:password@tcp(localhost:3306)/safetravels?charset=utf8mb4&parseTime=True&loc=Local",
		SeedDatabase:         true,
		JWTSecret:            defaultJWTSecret,
		JWTExpiry:            7 * 24 * time.Hour,
		FrontendURL:          "http://localhost:3000",
		StorageDriver:        "local",
		UploadDir:            "uploads",
		MaxFileSize:          5 * 1024 * 1024,
		MinioBucket:          "safetravels",
		RateLimitWindow:      15 * time.Minute,
		RateLimitMaxRequests: 100,
		SMTPPort:             587,
		FromEmail:            "noreply@safetravelsmotors.com",
		FromName:             "SafeTravels Motors",
		CleanupInterval:      time.Hour,
		CleanupGracePeriod:   24 * time.Hour,
		LogLevel:             "info",
	}
}

// Load reads .env (if present) and the environment on top of the defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("could not load environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, errors.New("config validation failed: JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// EmailEnabled reports whether an SMTP relay is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}
