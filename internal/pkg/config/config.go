package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/TokenFox/internal/pkg/constants"
)

// Supported identity providers.
const (
	ProviderGoogle = "google"
	ProviderOIDC   = "openid-connect"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Supported session storages.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config is the process-wide configuration. It is built once at startup and
// handed to every component that needs it.
type Config struct {
	Host         string   `env:"APP_HOST" envDefault:"localhost"`
	Port         string   `env:"APP_PORT" envDefault:"4000" validate:"required,numeric"`
	PublicURL    string   `env:"PUBLIC_URL" validate:"omitempty,url"`
	SecretKey    string   `env:"SECRET_KEY" validate:"required,base64"`
	Debug        bool     `env:"DEBUG" envDefault:"false"`
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:","`

	OAuth    OAuthConfig
	Database DatabaseConfig
	Session  SessionConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

// OAuthConfig describes the single identity provider the app signs in with.
type OAuthConfig struct {
	Provider     string        `env:"OAUTH_PROVIDER" envDefault:"google" validate:"oneof=google openid-connect"`
	ClientID     string        `env:"OAUTH_CLIENT_ID" validate:"required"`
	ClientSecret string        `env:"OAUTH_CLIENT_SECRET" validate:"required"`
	DiscoveryURL string        `env:"OAUTH_DISCOVERY_URL" validate:"omitempty,url"`
	Timeout      time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	// LinkByEmail attaches a new provider account to an existing user with the
	// same email instead of creating a second user.
	LinkByEmail bool `env:"LINK_BY_EMAIL" envDefault:"true"`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"sqlite" validate:"oneof=mysql sqlite"`
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"DB_PORT" envDefault:"3306"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"tokenfox"`
	Path     string `env:"DB_PATH" envDefault:"tokenfox.db"`
}

type SessionConfig struct {
	Storage string        `env:"SESSION_STORAGE" envDefault:"memory" validate:"oneof=memory redis"`
	TTL     time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"gt=0"`
}

type CacheConfig struct {
	Host     string `env:"CACHE_HOST" envDefault:"localhost"`
	Port     string `env:"CACHE_PORT" envDefault:"6379"`
	Password string `env:"CACHE_PASSWORD"`
}

type MetricsConfig struct {
	User     string `env:"METRICS_USER"`
	Password string `env:"METRICS_PASSWORD"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFromMap reads the configuration from the given variables only.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

// LoadDatabase reads only the database settings, for tools that do not serve
// HTTP.
func LoadDatabase() (DatabaseConfig, error) {
	var db DatabaseConfig
	if err := env.Parse(&db); err != nil {
		return db, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(db); err != nil {
		return db, fmt.Errorf("invalid config: %w", err)
	}
	return db, nil
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AllowedHosts = trimCSV(cfg.AllowedHosts)
	if len(cfg.AllowedHosts) == 0 && cfg.Debug {
		cfg.AllowedHosts = []string{"localhost", "127.0.0.1", "::1"}
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:" + cfg.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(c.SecretKey)
	if err != nil {
		return fmt.Errorf("invalid config: SECRET_KEY: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return errors.New("invalid config: SECRET_KEY must decode to 16, 24 or 32 bytes")
	}

	if len(c.AllowedHosts) == 0 {
		return errors.New("invalid config: ALLOWED_HOSTS is required when DEBUG is off")
	}
	if c.OAuth.Provider == ProviderOIDC && c.OAuth.DiscoveryURL == "" {
		return errors.New("invalid config: OAUTH_DISCOVERY_URL is required for openid-connect")
	}
	if c.Database.Driver == DriverMySQL && (c.Database.User == "" || c.Database.Name == "") {
		return errors.New("invalid config: DB_USER and DB_NAME are required for mysql")
	}
	return nil
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// CallbackURL is the redirect URI registered with the provider.
func (c *Config) CallbackURL(provider string) string {
	return c.PublicURL + constants.ProviderCallbackPath(provider)
}

// HostAllowed reports whether host (with or without port) may be served.
func (c *Config) HostAllowed(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(strings.ToLower(host), "[]")
	for _, allowed := range c.AllowedHosts {
		allowed = strings.ToLower(allowed)
		switch {
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "."):
			// ".example.com" matches the domain and all subdomains
			if host == allowed[1:] || strings.HasSuffix(host, allowed) {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}

// MySQLDSN builds the go-sql-driver DSN.
func (d DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// MigrateURL is the golang-migrate database URL. Migrations need
// multiStatements to run whole files.
func (d DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s)/%s?multiStatements=true",
		d.User, d.Password, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Addr is the Redis address.
func (c CacheConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MetricsEnabled reports whether the monitor endpoint should be mounted.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.User != "" && c.Metrics.Password != ""
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
