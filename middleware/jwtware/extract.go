package jwtware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName is the cookie carrying the token
const DefaultCookieName = "token"

// DefaultAuthScheme is the Authorization header scheme
const DefaultAuthScheme = "Bearer"

// Extractor locates a candidate token. ok is false when there is none.
type Extractor func(c *fiber.Ctx) (token string, ok bool)

// FromCookie returns an extractor reading the named cookie.
func FromCookie(name string) Extractor {
	return func(c *fiber.Ctx) (string, bool) {
		token := strings.TrimSpace(c.Cookies(name))
		return token, token != ""
	}
}

// FromHeader returns an extractor reading "Authorization: <scheme> <token>".
func FromHeader(authScheme string) Extractor {
	scheme := strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, bool) {
		if scheme == "" {
			return "", false
		}
		h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		l := len(scheme)
		if len(h) > l+1 && strings.EqualFold(h[:l], scheme) && h[l] == ' ' {
			token := strings.TrimSpace(h[l+1:])
			return token, token != ""
		}
		return "", false
	}
}

// Extractors returns the ordered extractors allowed by policy.
func Extractors(policy TransportPolicy, cookieName, authScheme string) []Extractor {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	extractors := []Extractor{FromCookie(cookieName)}
	if policy.AllowsHeader() {
		if authScheme == "" {
			authScheme = DefaultAuthScheme
		}
		extractors = append(extractors, FromHeader(authScheme))
	}
	return extractors
}

// ExtractToken applies the transport policy to c. Absence of a token is
// reported with ok=false, never as an error.
func ExtractToken(c *fiber.Ctx, policy TransportPolicy, cookieName, authScheme string) (string, bool) {
	return extract(c, Extractors(policy, cookieName, authScheme))
}

func extract(c *fiber.Ctx, extractors []Extractor) (string, bool) {
	for _, extractor := range extractors {
		if token, ok := extractor(c); ok {
			return token, true
		}
	}
	return "", false
}
