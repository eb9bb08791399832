package config

import "github.com/goliatone/go-retail-auth/middleware/jwtware"

// The getters below satisfy auth.Config.

func (c *Config) GetSigningKey() string { return c.Auth.SigningKey }

func (c *Config) GetTokenExpiration() int { return c.Auth.TokenExpiration }

func (c *Config) GetIssuer() string { return c.Auth.Issuer }

func (c *Config) GetAudience() []string { return c.Auth.Audience }

func (c *Config) GetContextKey() string { return c.Auth.ContextKey }

func (c *Config) GetAuthScheme() string { return c.Auth.AuthScheme }

func (c *Config) GetCookieName() string { return c.Cookie.Name }

func (c *Config) GetCookieMaxAge() int { return c.Cookie.MaxAge }

func (c *Config) GetCookieSameSite() string { return c.Cookie.SameSite }

func (c *Config) GetCookieSecure() bool { return c.Cookie.Secure }

// GetTransportPolicy returns the policy derived from the environment at
// load time. A Config built by hand without Load is cookie only.
func (c *Config) GetTransportPolicy() jwtware.TransportPolicy { return c.policy }

// WithTransportPolicy overrides the derived policy.
func (c *Config) WithTransportPolicy(p jwtware.TransportPolicy) *Config {
	c.policy = p
	return c
}
