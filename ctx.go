package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext finds the Principal in the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok
}

// GetPrincipal returns the Principal attached by ProtectedRoute, looking at
// the request user context first and then at c.Locals(key).
func GetPrincipal(c *fiber.Ctx, key ...string) (Principal, bool) {
	if p, ok := PrincipalFromContext(c.UserContext()); ok {
		return p, true
	}

	k := "user"
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}

	p, ok := c.Locals(k).(Principal)
	return p, ok
}
