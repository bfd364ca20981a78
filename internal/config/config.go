package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the shortest JWT_SECRET accepted at startup.
const MinSecretLength = 32

const defaultDatabase = "contactbook"

// insecureSecrets are placeholder values seen in sample env files.
var insecureSecrets = map[string]bool{
	"your-secret-key-change-in-production": true,
	"change-me-secret":                     true,
	"secret":                               true,
	"changeme":                             true,
}

type Config struct {
	MongoURI        string        `env:"MONGODB_URI"`
	MongoURIAlias   string        `env:"MONGO_URI"`
	MongoDatabase   string        `env:"MONGODB_DATABASE"`
	RedisURI        string        `env:"REDIS_URI"`
	JWTSecret       string        `env:"JWT_SECRET"`
	Port            string        `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"ENV" envDefault:"development"`
	Host            string        `env:"HOST" envDefault:"http://localhost:8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ContactCacheTTL time.Duration `env:"CONTACT_CACHE_TTL" envDefault:"5m"`
	TrustProxy      bool          `env:"TRUST_PROXY" envDefault:"false"`

	RawAllowedOrigins string `env:"ALLOWED_ORIGINS"`
	FrontendURL       string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	AllowedOrigins []string `env:"-"` // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	AllowedHost    string   `env:"-"` // Hostname only for strict host check (production only)
}

// Load reads the environment and validates it. A non-nil error means the
// process must not start.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.MongoURI == "" {
		cfg.MongoURI = cfg.MongoURIAlias
	}
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = databaseFromURI(cfg.MongoURI)
	}

	if cfg.IsProduction() {
		cfg.AllowedHost = hostname(cfg.Host)
	}

	cfg.AllowedOrigins = parseOrigins(cfg.RawAllowedOrigins)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = parseOrigins(cfg.FrontendURL)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports missing or unsafe settings.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	secret := strings.TrimSpace(c.JWTSecret)
	switch {
	case secret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case insecureSecrets[strings.ToLower(secret)]:
		errs = append(errs, errors.New("JWT_SECRET is a known placeholder value; generate one with: openssl rand -base64 48"))
	case len(secret) < MinSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}
	if c.ContactCacheTTL < 0 {
		errs = append(errs, errors.New("CONTACT_CACHE_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MaskedMongoURI returns the connection string with any password replaced.
func (c *Config) MaskedMongoURI() string {
	u, err := url.Parse(c.MongoURI)
	if err != nil || u.User == nil {
		return c.MongoURI
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultDatabase
}

func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !containsOrigin(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}
