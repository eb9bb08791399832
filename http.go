package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-retail-auth/middleware/jwtware"
)

// AuthorizationOptions configures a single protected route.
type AuthorizationOptions struct {
	// RequiredRoles, when non-empty, must intersect the principal roles.
	// Empty means any authenticated principal passes.
	RequiredRoles []string
	// StoreParam names a route param holding the store id being accessed.
	StoreParam string
}

// RouteAuthenticator delivers tokens over HTTP and builds route guards.
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	activitySink ActivitySink
	Logger       Logger
	ErrorHandler fiber.ErrorHandler
}

// tokenServiceProvider is implemented by authenticators that expose the
// TokenService signing their tokens.
type tokenServiceProvider interface {
	TokenService() *TokenService
}

// NewHTTPAuthenticator wires an Authenticator to the HTTP layer.
func NewHTTPAuthenticator(auther Authenticator, cfg Config) *RouteAuthenticator {
	logger := defLogger()
	return &RouteAuthenticator{
		auth:         auther,
		cfg:          cfg,
		activitySink: noopActivitySink{},
		Logger:       logger,
		ErrorHandler: ErrorHandler(logger),
	}
}

// WithLogger sets the logger, and the default error handler with it.
func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = normalizeLogger(logger)
	a.ErrorHandler = ErrorHandler(a.Logger)
	return a
}

// WithActivitySink configures an ActivitySink for access denied and logout events.
func (a *RouteAuthenticator) WithActivitySink(sink ActivitySink) *RouteAuthenticator {
	a.activitySink = normalizeActivitySink(sink)
	return a
}

// GetCookieDuration is the configured cookie max-age clamped to the
// lifetime of the tokens actually being signed.
func (a *RouteAuthenticator) GetCookieDuration() time.Duration {
	tokenTTL := a.tokenTTL()

	if maxAge := time.Duration(a.cfg.GetCookieMaxAge()) * time.Hour; maxAge > 0 && maxAge < tokenTTL {
		return maxAge
	}
	return tokenTTL
}

func (a *RouteAuthenticator) tokenTTL() time.Duration {
	if p, ok := a.auth.(tokenServiceProvider); ok {
		if ts := p.TokenService(); ts != nil && ts.TTL() > 0 {
			return ts.TTL()
		}
	}
	if a.cfg.GetTokenExpiration() > 0 {
		return time.Duration(a.cfg.GetTokenExpiration()) * time.Hour
	}
	return DefaultTokenTTL
}

// Policy returns the configured token transport policy
func (a *RouteAuthenticator) Policy() jwtware.TransportPolicy {
	return a.cfg.GetTransportPolicy()
}

// ProtectedRoute returns a guard for one route. Rejections are raised as
// UNAUTHENTICATED or FORBIDDEN domain errors and handed to ErrorHandler.
func (a *RouteAuthenticator) ProtectedRoute(opts AuthorizationOptions) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Verifier: func(raw string) (jwtware.Principal, error) {
			p, err := a.auth.Verify(raw)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		ErrorHandler:  a.guardErrorHandler,
		Policy:        a.cfg.GetTransportPolicy(),
		CookieName:    a.cfg.GetCookieName(),
		AuthScheme:    a.cfg.GetAuthScheme(),
		ContextKey:    a.cfg.GetContextKey(),
		RequiredRoles: opts.RequiredRoles,
		StoreParam:    opts.StoreParam,
		ContextEnricher: func(ctx context.Context, p jwtware.Principal) context.Context {
			principal, ok := p.(Principal)
			if !ok {
				return ctx
			}
			return WithPrincipal(ctx, principal)
		},
	})
}

func (a *RouteAuthenticator) guardErrorHandler(c *fiber.Ctx, err error) error {
	derr := guardError(err)

	emitActivity(c.UserContext(), a.activitySink, a.Logger, ActivityEvent{
		EventType: ActivityEventAccessDenied,
		Kind:      KindOf(derr),
		Reason:    ReasonOf(derr),
		Metadata: map[string]any{
			"path":   c.Path(),
			"method": c.Method(),
		},
	})

	return a.ErrorHandler(c, derr)
}

// guardError translates middleware failures into domain errors.
func guardError(err error) *DomainError {
	switch {
	case errors.Is(err, jwtware.ErrTokenMissing):
		return WithReason(ErrUnauthenticated, ReasonMissing)
	case errors.Is(err, jwtware.ErrInsufficientRole), errors.Is(err, jwtware.ErrStoreScope):
		return WithCause(ErrForbidden, err)
	}

	if Is(err, KindInternal) {
		return ToDomainError(err)
	}

	reason := ReasonOf(err)
	if reason == "" {
		reason = ReasonInvalid
	}
	return WithCause(WithReason(ErrUnauthenticated, reason), err)
}

// Login authenticates the payload and delivers the token as a cookie. The
// token is returned so callers can also echo it in the body when the
// transport policy allows headers.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(c.UserContext(), payload.GetEmail(), payload.GetPassword())
	if err != nil {
		return "", err
	}

	a.setCookieToken(c, token, a.GetCookieDuration())
	return token, nil
}

// Logout clears the token cookie
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	if p, ok := GetPrincipal(c, a.cfg.GetContextKey()); ok {
		emitActivity(c.UserContext(), a.activitySink, a.Logger, ActivityEvent{
			EventType: ActivityEventLogout,
			UserID:    p.ID(),
		})
	}
	a.cookieDel(c, a.cfg.GetCookieName())
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   a.cookieSecure(),
		SameSite: a.sameSite(),
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.cookieSecure(),
		SameSite: a.sameSite(),
	})
}

// cookieSecure forces Secure under the cookie-only policy.
func (a *RouteAuthenticator) cookieSecure() bool {
	return a.cfg.GetCookieSecure() || !a.cfg.GetTransportPolicy().AllowsHeader()
}

func (a *RouteAuthenticator) sameSite() string {
	switch strings.ToLower(a.cfg.GetCookieSameSite()) {
	case "none":
		return fiber.CookieSameSiteNoneMode
	case "strict":
		return fiber.CookieSameSiteStrictMode
	default:
		return fiber.CookieSameSiteLaxMode
	}
}
