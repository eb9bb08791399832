// Package config loads the retail auth service configuration.
//
// Values are resolved in three layers: built in defaults, an optional YAML
// file, then environment variables. The result is validated once and is
// read-only afterwards.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-retail-auth/middleware/jwtware"
)

// Environments accepted by NODE_ENV / environment.
const (
	EnvProd = "prod"
	EnvDev  = "dev"
)

const (
	minJWTSecretLength = 32
	redacted           = "[REDACTED]"
)

// Config is the root configuration.
type Config struct {
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Logging     LoggingConfig  `yaml:"logging"`
	Auth        AuthConfig     `yaml:"auth"`
	Cookie      CookieConfig   `yaml:"cookie"`
	Seed        SeedConfig     `yaml:"seed"`

	policy jwtware.TransportPolicy
}

// ServerConfig holds HTTP listener settings. Timeouts are in seconds.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout"`
}

// DatabaseConfig selects the user store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stdout or stderr
}

// AuthConfig holds token settings. TokenExpiration is in hours.
type AuthConfig struct {
	SigningKey      string   `yaml:"jwt_secret"`
	TokenExpiration int      `yaml:"token_expiration"`
	Issuer          string   `yaml:"issuer"`
	Audience        []string `yaml:"audience"`
	ContextKey      string   `yaml:"context_key"`
	AuthScheme      string   `yaml:"auth_scheme"`
}

// CookieConfig holds the token cookie attributes. MaxAge is in hours and
// Secret is a base64 encoded AES key used to encrypt cookie values.
type CookieConfig struct {
	Name     string `yaml:"name"`
	Secret   string `yaml:"secret"`
	MaxAge   int    `yaml:"max_age"`
	SameSite string `yaml:"same_site"`
	Secure   bool   `yaml:"secure"`
}

// SeedConfig optionally creates a bootstrap admin on start.
type SeedConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Load reads configuration from path. An empty path skips the file and
// uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.policy, _ = jwtware.PolicyForEnvironment(cfg.Environment)

	return cfg, nil
}

// Default returns a Config with defaults. Secrets have no default.
func Default() *Config {
	return &Config{
		Environment: EnvProd,
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
			IdleTimeout:  60,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:retail-auth.db?cache=shared",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Auth: AuthConfig{
			TokenExpiration: 24,
			ContextKey:      "user",
			AuthScheme:      jwtware.DefaultAuthScheme,
		},
		Cookie: CookieConfig{
			Name:     jwtware.DefaultCookieName,
			MaxAge:   24,
			SameSite: "Lax",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.Environment = v
	}

	if v := os.Getenv("RETAIL_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.SigningKey = v
	}
	if v := os.Getenv("RETAIL_AUTH_COOKIE_SECRET"); v != "" {
		cfg.Cookie.Secret = v
	}

	if v := os.Getenv("RETAIL_AUTH_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("RETAIL_AUTH_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("RETAIL_AUTH_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RETAIL_AUTH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RETAIL_AUTH_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("RETAIL_AUTH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("RETAIL_AUTH_TOKEN_EXPIRATION"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RETAIL_AUTH_TOKEN_EXPIRATION: %w", err)
		}
		cfg.Auth.TokenExpiration = hours
	}

	if v := os.Getenv("RETAIL_AUTH_SEED_ADMIN_EMAIL"); v != "" {
		cfg.Seed.AdminEmail = v
	}
	if v := os.Getenv("RETAIL_AUTH_SEED_ADMIN_PASSWORD"); v != "" {
		cfg.Seed.AdminPassword = v
	}

	return nil
}

// Validate checks the configuration. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Environment {
	case EnvProd, EnvDev:
	default:
		errs = append(errs, fmt.Sprintf("environment must be %q or %q, got %q", EnvProd, EnvDev, c.Environment))
	}

	if c.Auth.SigningKey == "" {
		errs = append(errs, "auth.jwt_secret is required (set RETAIL_AUTH_JWT_SECRET)")
	} else if len(c.Auth.SigningKey) < minJWTSecretLength {
		errs = append(errs, "auth.jwt_secret must be at least 32 bytes")
	}

	if c.Auth.TokenExpiration <= 0 {
		errs = append(errs, "auth.token_expiration must be greater than zero")
	}

	if c.Cookie.Secret == "" {
		errs = append(errs, "cookie.secret is required (set RETAIL_AUTH_COOKIE_SECRET)")
	} else if key, err := base64.StdEncoding.DecodeString(c.Cookie.Secret); err != nil {
		errs = append(errs, "cookie.secret must be base64 encoded")
	} else if n := len(key); n != 16 && n != 24 && n != 32 {
		errs = append(errs, "cookie.secret must decode to a 16, 24 or 32 byte key")
	}

	if c.Cookie.Name == "" {
		errs = append(errs, "cookie.name is required")
	}

	switch strings.ToLower(c.Cookie.SameSite) {
	case "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			errs = append(errs, "cookie.same_site None requires cookie.secure")
		}
	default:
		errs = append(errs, "cookie.same_site must be Lax, Strict or None")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "database.driver must be sqlite or postgres")
	}
	if c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	if (c.Seed.AdminEmail == "") != (c.Seed.AdminPassword == "") {
		errs = append(errs, "seed.admin_email and seed.admin_password must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// String renders the configuration as YAML with secrets redacted.
func (c *Config) String() string {
	cp := *c
	if cp.Auth.SigningKey != "" {
		cp.Auth.SigningKey = redacted
	}
	if cp.Cookie.Secret != "" {
		cp.Cookie.Secret = redacted
	}
	if cp.Seed.AdminPassword != "" {
		cp.Seed.AdminPassword = redacted
	}
	if cp.Database.DSN != "" && c.Database.Driver == "postgres" {
		cp.Database.DSN = redacted
	}

	out, err := yaml.Marshal(&cp)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}

func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeout) * time.Second
}

// IsProduction reports whether the environment is prod.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProd
}
