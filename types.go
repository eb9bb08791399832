package auth

import (
	"context"

	"github.com/goliatone/go-retail-auth/middleware/jwtware"
)

// Logger is the logging contract used across the package. Args are
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Verify(token string) (Principal, error)
}

// UserStore is the read-only user persistence capability consumed by login.
// Implementations return ErrRecordNotFound when no user matches.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// UserStoreFunc adapts a function to the UserStore interface.
type UserStoreFunc func(ctx context.Context, email string) (*UserRecord, error)

// FindUserByEmail implements UserStore.
func (f UserStoreFunc) FindUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return f(ctx, email)
}

// UserRecord is the subset of a stored user that login needs.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	StoreID      string
	Active       bool
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetAuthScheme() string
	GetCookieName() string
	GetCookieMaxAge() int
	GetCookieSameSite() string
	GetCookieSecure() bool
	GetTransportPolicy() jwtware.TransportPolicy
}
