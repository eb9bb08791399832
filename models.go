package auth

import (
	"errors"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Roles         []string   `bun:"roles" json:"roles,omitempty"`
	StoreID       *string    `bun:"store_id" json:"store_id,omitempty"`
	Active        bool       `bun:"is_active,notnull" json:"is_active"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Record converts the model into the view login consumes.
func (u *User) Record() *UserRecord {
	if u == nil {
		return nil
	}

	r := &UserRecord{
		ID:           u.ID.String(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        append([]string(nil), u.Roles...),
		Active:       u.Active,
	}
	if u.StoreID != nil {
		r.StoreID = *u.StoreID
	}
	return r
}

// Validate checks the user before it is stored. Managers and sellers
// belong to a store; admins may be global.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.PasswordHash, validation.Required),
		validation.Field(&u.Roles, validation.Each(validation.In(rolesAsAny()...))),
		validation.Field(&u.StoreID, validation.By(func(any) error {
			if u.needsStoreScope() && (u.StoreID == nil || *u.StoreID == "") {
				return errors.New("is required for store roles")
			}
			return nil
		})),
	)
}

func (u User) needsStoreScope() bool {
	return len(u.Roles) > 0 && !slices.Contains(u.Roles, RoleAdmin)
}

func prepareUserDefaults(u *User) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.StoreID != nil && *u.StoreID == "" {
		u.StoreID = nil
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
