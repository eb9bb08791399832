package jwtware

import (
	"fmt"
	"strings"
)

// TransportPolicy governs where a token may be read from.
type TransportPolicy int

const (
	// PolicyCookie reads the token from the named cookie only. Headers are
	// never consulted.
	PolicyCookie TransportPolicy = iota
	// PolicyCookieOrHeader prefers the cookie and falls back to the
	// Authorization header.
	PolicyCookieOrHeader
)

func (p TransportPolicy) String() string {
	switch p {
	case PolicyCookie:
		return "cookie"
	case PolicyCookieOrHeader:
		return "cookie_or_header"
	default:
		return fmt.Sprintf("TransportPolicy(%d)", int(p))
	}
}

// AllowsHeader reports whether the Authorization header may be consulted.
func (p TransportPolicy) AllowsHeader() bool {
	return p == PolicyCookieOrHeader
}

// ParseTransportPolicy parses the String form of a policy.
func ParseTransportPolicy(s string) (TransportPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cookie":
		return PolicyCookie, nil
	case "cookie_or_header", "cookie-or-header":
		return PolicyCookieOrHeader, nil
	default:
		return PolicyCookie, fmt.Errorf("unknown transport policy %q", s)
	}
}

// PolicyForEnvironment maps a deployment environment to its policy:
// prod → cookie only, dev → cookie or header.
func PolicyForEnvironment(env string) (TransportPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return PolicyCookie, nil
	case "dev", "development":
		return PolicyCookieOrHeader, nil
	default:
		return PolicyCookie, fmt.Errorf("unknown environment %q", env)
	}
}
