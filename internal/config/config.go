package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config aggregates runtime configuration for the InfinityFire API.
type Config struct {
	Server      ServerConfig
	Postgres    PostgresConfig
	ObjectStore ObjectStoreConfig
	Auth        AuthConfig
	Metrics     MetricsConfig
	HTTP        HTTPConfig
	Files       FilesConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string        `env:"INFINITYFIRE_API_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"INFINITYFIRE_API_PORT" envDefault:"5000"`
	ReadTimeout  time.Duration `env:"INFINITYFIRE_API_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"INFINITYFIRE_API_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"INFINITYFIRE_API_IDLE_TIMEOUT" envDefault:"60s"`
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	URL            string        `env:"DATABASE_URL"`
	Host           string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port           int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User           string        `env:"POSTGRES_USER" envDefault:"infinityfire"`
	Password       string        `env:"POSTGRES_PASSWORD" envDefault:"change-me"`
	Database       string        `env:"POSTGRES_DB" envDefault:"infinityfire"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" envDefault:"5"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"30s"`
	AutoMigrate    bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// DSN returns the PostgreSQL DSN string. DATABASE_URL wins when set.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// ObjectStoreConfig carries S3-compatible endpoint and bucket information.
type ObjectStoreConfig struct {
	Endpoint        string `env:"S3_ENDPOINT" envDefault:"s3.amazonaws.com"`
	AccessKeyID     string `env:"S3_ACCESS_KEY"`
	SecretAccessKey string `env:"S3_SECRET_KEY"`
	Bucket          string `env:"S3_BUCKET_NAME" envDefault:"infinityfire"`
	Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	UseSSL          bool   `env:"S3_USE_SSL" envDefault:"true"`
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	AccessTokenSecret string        `env:"JWT_SECRET" envDefault:"change-me-to-a-32-byte-secret"`
	AccessTokenTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	BcryptCost        int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	BootstrapAdmin    BootstrapAdminConfig
}

// BootstrapAdminConfig describes the administrator created at boot when no
// account with that email exists yet. Empty email disables bootstrapping.
type BootstrapAdminConfig struct {
	Email    string `env:"ADMIN_BOOTSTRAP_EMAIL"`
	Username string `env:"ADMIN_BOOTSTRAP_USERNAME" envDefault:"admin"`
	Password string `env:"ADMIN_BOOTSTRAP_PASSWORD"`
}

// Enabled reports whether a bootstrap administrator is configured.
func (b BootstrapAdminConfig) Enabled() bool {
	return b.Email != "" && b.Password != ""
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string `env:"INFINITYFIRE_METRICS_PATH" envDefault:"/metrics"`
}

// HTTPConfig holds edge settings: CORS and rate limiting.
type HTTPConfig struct {
	AllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMax     int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitClients int           `env:"RATE_LIMIT_TRACKED_CLIENTS" envDefault:"10000"`
}

// FilesConfig bounds pre-signed download URL lifetimes, in seconds.
type FilesConfig struct {
	DefaultExpiry int `env:"FILES_DOWNLOAD_EXPIRY_DEFAULT" envDefault:"3600"`
	MinExpiry     int `env:"FILES_DOWNLOAD_EXPIRY_MIN" envDefault:"300"`
	MaxExpiry     int `env:"FILES_DOWNLOAD_EXPIRY_MAX" envDefault:"86400"`
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Postgres.SSLMode = strings.ToLower(cfg.Postgres.SSLMode)
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		cfg.Auth.BcryptCost = 12
	}
	if cfg.Files.MinExpiry > cfg.Files.MaxExpiry {
		return Config{}, fmt.Errorf("download expiry bounds inverted: min %d > max %d", cfg.Files.MinExpiry, cfg.Files.MaxExpiry)
	}

	return cfg, nil
}
