package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is used when no positive expiration is configured.
const DefaultTokenTTL = 24 * time.Hour

// TokenService signs and verifies tokens. It holds no mutable state and is
// safe for concurrent use.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithClock overrides the time source used to stamp and check tokens.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, audience []string, logger Logger, opts ...TokenServiceOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	var aud jwt.ClaimStrings
	if len(audience) > 0 {
		aud = make(jwt.ClaimStrings, len(audience))
		copy(aud, audience)
	}

	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	ts := &TokenService{
		signingKey: key,
		ttl:        ttl,
		issuer:     issuer,
		audience:   aud,
		logger:     normalizeLogger(logger),
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// NewTokenServiceFromConfig builds a TokenService from Config.
func NewTokenServiceFromConfig(cfg Config, logger Logger, opts ...TokenServiceOption) *TokenService {
	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		time.Duration(cfg.GetTokenExpiration())*time.Hour,
		cfg.GetIssuer(),
		cfg.GetAudience(),
		logger,
		opts...,
	)
}

// TTL returns the token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Sign issues a token for the principal.
func (ts *TokenService) Sign(p Principal) (string, error) {
	if p.ID() == "" {
		return "", NewError(KindInternal, "cannot sign token without subject")
	}

	now := ts.now()
	claims := p.newClaims()
	claims.Issuer = ts.issuer
	claims.Audience = ts.audience
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.ttl))
	claims.ID = uuid.NewString()

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenService) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", NewError(KindInternal, "claims must not be nil")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", WrapError(err, KindInternal, "failed to sign token")
	}

	return signed, nil
}

// Verify parses and validates a token string. Any failure is reported as
// INVALID_TOKEN, the specific cause is kept in the reason metadata.
func (ts *TokenService) Verify(raw string) (*JWTClaims, error) {
	if raw == "" {
		return nil, WithReason(ErrInvalidToken, ReasonMissing)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		opts = append(opts, jwt.WithAudience(ts.audience[0]))
	}

	token, err := jwt.ParseWithClaims(raw, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, opts...)

	if err != nil {
		reason := tokenFailureReason(err)
		ts.logger.Debug("token verification failed", "reason", reason, "error", err)
		return nil, WithCause(WithReason(ErrInvalidToken, reason), err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, WithReason(ErrInvalidToken, ReasonInvalid)
	}

	if claims.Subject == "" {
		return nil, WithReason(ErrInvalidToken, ReasonInvalidClaims)
	}

	return claims, nil
}

// VerifyPrincipal verifies raw and returns the Principal it encodes.
func (ts *TokenService) VerifyPrincipal(raw string) (Principal, error) {
	claims, err := ts.Verify(raw)
	if err != nil {
		return Principal{}, err
	}
	return PrincipalFromClaims(claims), nil
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ReasonInvalidClaims
	default:
		return ReasonInvalid
	}
}
