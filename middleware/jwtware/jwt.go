package jwtware

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrTokenMissing is passed to the ErrorHandler when no token was found.
	ErrTokenMissing = errors.New("missing authentication token")
	// ErrInsufficientRole is passed when the principal holds none of the required roles.
	ErrInsufficientRole = errors.New("access denied: insufficient role")
	// ErrStoreScope is passed when the principal is scoped to a different store.
	ErrStoreScope = errors.New("access denied: store scope mismatch")
)

// Principal is the identity a Verifier resolves a token to. Defined here so
// the middleware does not depend on the auth package.
type Principal interface {
	ID() string
	HasAnyRole(roles ...string) bool
	CanAccessStore(storeID string) bool
}

// Verifier validates a raw token and returns its Principal.
type Verifier func(token string) (Principal, error)

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// SuccessHandler runs after the principal is attached. Defaults to c.Next.
	SuccessHandler fiber.Handler
	// ErrorHandler receives every rejection. Defaults to a plain 401/403.
	ErrorHandler fiber.ErrorHandler
	// Verifier is required.
	Verifier Verifier

	Policy     TransportPolicy
	CookieName string
	AuthScheme string
	// ContextKey is the c.Locals key the principal is stored under.
	ContextKey string

	// RequiredRoles, when non-empty, must intersect the principal roles.
	RequiredRoles []string
	// StoreParam names a route param holding a store id the principal must
	// be allowed to access.
	StoreParam string

	// ContextEnricher propagates the principal into c.UserContext().
	ContextEnricher func(ctx context.Context, p Principal) context.Context
}

// New returns a per-route guard. The request either reaches the next
// handler with a principal attached or is rejected through ErrorHandler.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := Extractors(cfg.Policy, cfg.CookieName, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, ok := extract(c, extractors)
		if !ok {
			return cfg.ErrorHandler(c, ErrTokenMissing)
		}

		principal, err := cfg.Verifier(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := authorize(c, principal, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, principal)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), principal))
		}

		return cfg.SuccessHandler(c)
	}
}

func authorize(c *fiber.Ctx, p Principal, cfg Config) error {
	if len(cfg.RequiredRoles) > 0 && !p.HasAnyRole(cfg.RequiredRoles...) {
		return fmt.Errorf("%w: requires one of %v", ErrInsufficientRole, cfg.RequiredRoles)
	}

	if cfg.StoreParam != "" {
		if storeID := c.Params(cfg.StoreParam); storeID != "" && !p.CanAccessStore(storeID) {
			return fmt.Errorf("%w: store %q", ErrStoreScope, storeID)
		}
	}

	return nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("AUTH: JWT middleware configuration: Verifier is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			if errors.Is(err, ErrInsufficientRole) || errors.Is(err, ErrStoreScope) {
				return c.Status(fiber.StatusForbidden).SendString("Forbidden")
			}
			return c.Status(fiber.StatusUnauthorized).SendString("Invalid or expired token")
		}
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = DefaultAuthScheme
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	return cfg
}
