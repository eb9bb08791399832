package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// LoginPayload is what RouteAuthenticator.Login needs from a request
type LoginPayload interface {
	GetEmail() string
	GetPassword() string
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetEmail returns the email
func (r LoginRequest) GetEmail() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules. The email is checked the way login
// will look it up, with surrounding whitespace removed.
func (r LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)

	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(3, 254),
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(1, 512),
		),
	)
}

type AuthControllerRoutes struct {
	Login  string
	Logout string
	Me     string
}

// AuthController serves the login, logout and current principal endpoints.
type AuthController struct {
	Logger Logger
	Routes *AuthControllerRoutes
	Auther *RouteAuthenticator
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

// WithControllerRoutes overrides the default route paths
func WithControllerRoutes(routes AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes.Login != "" {
			c.Routes.Login = routes.Login
		}
		if routes.Logout != "" {
			c.Routes.Logout = routes.Logout
		}
		if routes.Me != "" {
			c.Routes.Me = routes.Me
		}
		return c
	}
}

func NewAuthController(auther *RouteAuthenticator, opts ...AuthControllerOption) *AuthController {
	if auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	c := &AuthController{
		Logger: auther.Logger,
		Auther: auther,
		Routes: &AuthControllerRoutes{
			Login:  "/login",
			Logout: "/logout",
			Me:     "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// RegisterAuthRoutes mounts the controller on r.
func RegisterAuthRoutes(r fiber.Router, controller *AuthController) {
	guard := controller.Auther.ProtectedRoute(AuthorizationOptions{})

	r.Post(controller.Routes.Login, controller.LoginPost).Name("auth.login")
	r.Post(controller.Routes.Logout, guard, controller.LogoutPost).Name("auth.logout")
	r.Get(controller.Routes.Me, guard, controller.Me).Name("auth.me")
}

// LoginPost handles POST /login. The token goes out as a cookie; it is also
// echoed in the body only when headers are an accepted transport.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("login payload parse failed", "error", err)
		return a.Auther.ErrorHandler(c, WrapError(err, KindBadRequest, "Malformed request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.Auther.ErrorHandler(c, WithCause(ErrBadRequest, err).WithMetadata(map[string]any{
			"validation": err.Error(),
		}))
	}

	token, err := a.Auther.Login(c, payload)
	if err != nil {
		return a.Auther.ErrorHandler(c, err)
	}

	var data any
	if a.Auther.Policy().AllowsHeader() {
		data = fiber.Map{"token": token}
	}

	return respondOK(c, "Login successful", data)
}

// LogoutPost handles POST /logout
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return respondOK(c, "Logout successful", nil)
}

// PrincipalView is the JSON form of a Principal
type PrincipalView struct {
	ID      string   `json:"id"`
	Roles   []string `json:"roles"`
	StoreID string   `json:"storeId,omitempty"`
}

// NewPrincipalView renders p for responses
func NewPrincipalView(p Principal) PrincipalView {
	return PrincipalView{ID: p.ID(), Roles: p.Roles(), StoreID: p.StoreID()}
}

// Me handles GET /me
func (a *AuthController) Me(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return a.Auther.ErrorHandler(c, ErrUnauthenticated)
	}
	return respondOK(c, "Authenticated", NewPrincipalView(p))
}
