package config

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-retail-auth/middleware/jwtware"
)

const testJWTSecret = "test-secret-key-at-least-32-chars!"

func testCookieSecret() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func validConfig() *Config {
	cfg := Default()
	cfg.Auth.SigningKey = testJWTSecret
	cfg.Cookie.Secret = testCookieSecret()
	return cfg
}

func TestLoad_ValidFile(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	path := writeConfig(t, `
environment: dev
server:
  host: "127.0.0.1"
  port: 9090
database:
  driver: sqlite
  dsn: "file::memory:"
auth:
  jwt_secret: "`+testJWTSecret+`"
  token_expiration: 2
  issuer: retail
  audience: [pos]
cookie:
  secret: "`+testCookieSecret()+`"
  max_age: 1
  same_site: Strict
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Environment)
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
	assert.Equal(t, 2, cfg.GetTokenExpiration())
	assert.Equal(t, "retail", cfg.GetIssuer())
	assert.Equal(t, []string{"pos"}, cfg.GetAudience())
	assert.Equal(t, 1, cfg.GetCookieMaxAge())
	assert.Equal(t, "Strict", cfg.GetCookieSameSite())
	assert.Equal(t, jwtware.PolicyCookieOrHeader, cfg.GetTransportPolicy())
	// untouched defaults survive the file
	assert.Equal(t, jwtware.DefaultCookieName, cfg.GetCookieName())
	assert.Equal(t, "user", cfg.GetContextKey())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "environment: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NODE_ENV", "prod")
	t.Setenv("RETAIL_AUTH_JWT_SECRET", testJWTSecret)
	t.Setenv("RETAIL_AUTH_COOKIE_SECRET", testCookieSecret())
	t.Setenv("RETAIL_AUTH_DATABASE_DRIVER", "postgres")
	t.Setenv("RETAIL_AUTH_DATABASE_DSN", "postgres://retail:pw@localhost/retail")
	t.Setenv("RETAIL_AUTH_PORT", "7000")
	t.Setenv("RETAIL_AUTH_TOKEN_EXPIRATION", "8")
	t.Setenv("RETAIL_AUTH_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, jwtware.PolicyCookie, cfg.GetTransportPolicy())
	assert.Equal(t, testJWTSecret, cfg.GetSigningKey())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 8, cfg.GetTokenExpiration())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_BadNumericEnv(t *testing.T) {
	t.Setenv("RETAIL_AUTH_JWT_SECRET", testJWTSecret)
	t.Setenv("RETAIL_AUTH_COOKIE_SECRET", testCookieSecret())
	t.Setenv("RETAIL_AUTH_TOKEN_EXPIRATION", "one day")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETAIL_AUTH_TOKEN_EXPIRATION")
}

func TestLoad_DefaultsToProd(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	t.Setenv("RETAIL_AUTH_JWT_SECRET", testJWTSecret)
	t.Setenv("RETAIL_AUTH_COOKIE_SECRET", testCookieSecret())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvProd, cfg.Environment)
	assert.Equal(t, jwtware.PolicyCookie, cfg.GetTransportPolicy())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Environment = "staging" },
			wantErr: "environment must be",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.SigningKey = "" },
			wantErr: "auth.jwt_secret is required",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Auth.SigningKey = "short" },
			wantErr: "at least 32 bytes",
		},
		{
			name:    "zero token expiration",
			mutate:  func(c *Config) { c.Auth.TokenExpiration = 0 },
			wantErr: "token_expiration",
		},
		{
			name:    "cookie secret not base64",
			mutate:  func(c *Config) { c.Cookie.Secret = "not base64!!" },
			wantErr: "base64",
		},
		{
			name: "cookie secret wrong key size",
			mutate: func(c *Config) {
				c.Cookie.Secret = base64.StdEncoding.EncodeToString([]byte("tiny"))
			},
			wantErr: "16, 24 or 32 byte key",
		},
		{
			name:    "unknown same site",
			mutate:  func(c *Config) { c.Cookie.SameSite = "sometimes" },
			wantErr: "same_site must be",
		},
		{
			name:    "same site none without secure",
			mutate:  func(c *Config) { c.Cookie.SameSite = "None" },
			wantErr: "requires cookie.secure",
		},
		{
			name: "same site none with secure",
			mutate: func(c *Config) {
				c.Cookie.SameSite = "None"
				c.Cookie.Secure = true
			},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "database.driver",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "seed email without password",
			mutate:  func(c *Config) { c.Seed.AdminEmail = "admin@example.com" },
			wantErr: "must be set together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Seed.AdminEmail = "admin@example.com"
	cfg.Seed.AdminPassword = "hunter22"

	out := cfg.String()

	assert.NotContains(t, out, testJWTSecret)
	assert.NotContains(t, out, cfg.Cookie.Secret)
	assert.NotContains(t, out, "hunter22")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "admin@example.com")

	// the receiver is not modified
	assert.Equal(t, testJWTSecret, cfg.Auth.SigningKey)
}

func TestHandBuiltConfigIsCookieOnly(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, jwtware.PolicyCookie, cfg.GetTransportPolicy())

	cfg.WithTransportPolicy(jwtware.PolicyCookieOrHeader)
	assert.Equal(t, jwtware.PolicyCookieOrHeader, cfg.GetTransportPolicy())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "retail-auth", entry["service"])
	assert.Equal(t, "value", entry["key"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("WARNING").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}
