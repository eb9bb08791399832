package auth

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload embedded in every token we sign
type JWTClaims struct {
	jwt.RegisteredClaims
	Roles   []string `json:"roles"`
	StoreID string   `json:"storeId,omitempty"`
}

// UserID returns the subject claim
func (c *JWTClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Principal is the authenticated identity attached to a request. It is a
// value type; accessors hand out copies so it cannot be mutated after
// construction.
type Principal struct {
	id      string
	roles   []string
	storeID string
}

// NewPrincipal builds a Principal. Roles keep their order, duplicates and
// empty entries are dropped.
func NewPrincipal(id string, roles []string, storeID string) Principal {
	clean := make([]string, 0, len(roles))
	for _, r := range roles {
		if r == "" || slices.Contains(clean, r) {
			continue
		}
		clean = append(clean, r)
	}
	return Principal{id: id, roles: clean, storeID: storeID}
}

// PrincipalFromClaims reconstructs the Principal encoded in verified claims.
func PrincipalFromClaims(c *JWTClaims) Principal {
	if c == nil {
		return Principal{}
	}
	return NewPrincipal(c.Subject, c.Roles, c.StoreID)
}

func (p Principal) ID() string { return p.id }

// Roles returns a copy of the principal roles.
func (p Principal) Roles() []string {
	return slices.Clone(p.roles)
}

// StoreID returns the store scope, empty when the principal is not scoped.
func (p Principal) StoreID() string { return p.storeID }

func (p Principal) HasStoreScope() bool { return p.storeID != "" }

// IsZero reports whether p is the zero Principal.
func (p Principal) IsZero() bool {
	return p.id == "" && len(p.roles) == 0 && p.storeID == ""
}

// HasRole checks if the principal holds role
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.roles, role)
}

// HasAnyRole reports whether the principal holds at least one of roles.
// An empty list never matches.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// CanAccessStore reports whether the principal may act on storeID. Principals
// without a store scope are not restricted.
func (p Principal) CanAccessStore(storeID string) bool {
	if !p.HasStoreScope() {
		return true
	}
	return p.storeID == storeID
}

func (p Principal) newClaims() *JWTClaims {
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: p.id},
		Roles:            p.Roles(),
		StoreID:          p.storeID,
	}
}
