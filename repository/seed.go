package repository

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-retail-auth"
)

// PasswordHasher produces a stored hash from a plain password.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// SeedAdminMessage asks for a bootstrap ADMIN user with no store scope.
type SeedAdminMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e SeedAdminMessage) Type() string { return "user.seed_admin" }

// SeedAdminHandler creates the bootstrap admin unless a user with that
// email already exists. Existing users are never modified.
type SeedAdminHandler struct {
	repo      auth.RepositoryManager
	hasher    PasswordHasher
	onCreated func(user *auth.User)
}

type SeedAdminOption func(*SeedAdminHandler)

// WithSeedAdminCreated registers a callback invoked after the admin row
// is committed.
func WithSeedAdminCreated(fn func(user *auth.User)) SeedAdminOption {
	return func(h *SeedAdminHandler) {
		h.onCreated = fn
	}
}

func NewSeedAdminHandler(repo auth.RepositoryManager, hasher PasswordHasher, opts ...SeedAdminOption) *SeedAdminHandler {
	h := &SeedAdminHandler{
		repo:   repo,
		hasher: hasher,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *SeedAdminHandler) Execute(ctx context.Context, msg SeedAdminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin seed",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *SeedAdminHandler) execute(ctx context.Context, msg SeedAdminMessage) error {
	if msg.Email == "" || msg.Password == "" {
		return goerrors.Wrap(auth.ErrNoEmptyString, goerrors.CategoryValidation, "admin email and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var created *auth.User
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := h.repo.Users().GetByEmailTx(ctx, tx, msg.Email)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, auth.ErrRecordNotFound):
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up admin")
		}

		hash, err := h.hasher.HashPassword(msg.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		created, err = h.repo.Users().CreateTx(ctx, tx, &auth.User{
			Name:         "Administrator",
			Email:        msg.Email,
			PasswordHash: hash,
			Roles:        []string{auth.RoleAdmin},
			Active:       true,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create admin")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created != nil && h.onCreated != nil {
		h.onCreated(created)
	}
	return nil
}
