package auth

import (
	"context"
	"errors"
	"strings"
)

// Auther implements Authenticator on top of a UserStore, a PasswordVerifier
// and a TokenService.
type Auther struct {
	store        UserStore
	verifier     PasswordVerifier
	tokenService *TokenService
	logger       Logger
	activitySink ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, verifier PasswordVerifier, cfg Config) *Auther {
	logger := defLogger()
	return &Auther{
		store:        store,
		verifier:     verifier,
		tokenService: NewTokenServiceFromConfig(cfg, logger),
		logger:       logger,
		activitySink: noopActivitySink{},
	}
}

// WithLogger sets the logger on the authenticator and its token service.
func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	s.tokenService.logger = s.logger
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService replaces the token service, e.g. to inject a clock.
func (s *Auther) WithTokenService(ts *TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokenService
}

// NormalizeEmail trims and lower-cases an email for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the credentials and returns a signed token. It performs a
// single store read and no writes, so it is safe to retry.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	if email == "" || password == "" {
		err := NewError(KindBadRequest, "Email and password are required")
		return "", s.loginFailed(ctx, email, "", err)
	}

	record, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", s.loginFailed(ctx, email, "", WithCause(ErrUserNotFound, err))
		}
		s.logger.Error("login user lookup failed", "error", err)
		return "", s.loginFailed(ctx, email, "", WrapError(err, KindInternal, "failed to retrieve user"))
	}

	if record == nil {
		return "", s.loginFailed(ctx, email, "", derive(ErrUserNotFound))
	}

	if !record.Active {
		s.logger.Warn("login blocked for inactive user", "user_id", record.ID)
		return "", s.loginFailed(ctx, email, record.ID, derive(ErrUserInactive))
	}

	if s.verifier == nil || !s.verifier.Verify(password, record.PasswordHash) {
		return "", s.loginFailed(ctx, email, record.ID, derive(ErrInvalidPassword))
	}

	token, err := s.tokenService.Sign(NewPrincipal(record.ID, record.Roles, record.StoreID))
	if err != nil {
		s.logger.Error("login token signing failed", "user_id", record.ID, "error", err)
		return "", s.loginFailed(ctx, email, record.ID, err)
	}

	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    record.ID,
		Metadata:  map[string]any{"email": email},
	})

	return token, nil
}

// Verify validates a token and returns its Principal.
func (s *Auther) Verify(token string) (Principal, error) {
	return s.tokenService.VerifyPrincipal(token)
}

func (s *Auther) loginFailed(ctx context.Context, email, userID string, err error) error {
	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		UserID:    userID,
		Kind:      KindOf(err),
		Metadata:  map[string]any{"email": email},
	})
	return err
}
