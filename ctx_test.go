package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-retail-auth"
)

func TestPrincipalContext(t *testing.T) {
	p := auth.NewPrincipal("u1", []string{auth.RoleSeller}, "store-1")

	ctx := auth.WithPrincipal(context.Background(), p)
	got, ok := auth.PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = auth.PrincipalFromContext(context.Background())
	assert.False(t, ok)

	_, ok = auth.PrincipalFromContext(nil)
	assert.False(t, ok)
}

func TestGetPrincipal(t *testing.T) {
	p := auth.NewPrincipal("u1", []string{auth.RoleSeller}, "store-1")

	tests := []struct {
		name  string
		setup func(c *fiber.Ctx)
		key   []string
		found bool
	}{
		{
			name:  "user context",
			setup: func(c *fiber.Ctx) { c.SetUserContext(auth.WithPrincipal(c.UserContext(), p)) },
			found: true,
		},
		{
			name:  "default locals key",
			setup: func(c *fiber.Ctx) { c.Locals("user", p) },
			found: true,
		},
		{
			name:  "custom locals key",
			setup: func(c *fiber.Ctx) { c.Locals("principal", p) },
			key:   []string{"principal"},
			found: true,
		},
		{
			name:  "wrong locals type",
			setup: func(c *fiber.Ctx) { c.Locals("user", "u1") },
		},
		{
			name:  "nothing attached",
			setup: func(*fiber.Ctx) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				tt.setup(c)
				got, ok := auth.GetPrincipal(c, tt.key...)
				assert.Equal(t, tt.found, ok)
				if tt.found {
					assert.Equal(t, p, got)
				}
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		})
	}
}
