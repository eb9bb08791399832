package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-retail-auth"
	"github.com/goliatone/go-retail-auth/config"
	"github.com/goliatone/go-retail-auth/middleware/jwtware"
)

const password = "correct-horse"

func testConfig(policy jwtware.TransportPolicy) *config.Config {
	cfg := config.Default()
	cfg.Auth.SigningKey = "test-secret-key-at-least-32-chars!"
	cfg.Cookie.Secret = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	if policy == jwtware.PolicyCookieOrHeader {
		cfg.Environment = config.EnvDev
	}
	return cfg.WithTransportPolicy(policy)
}

func testStore(t *testing.T) auth.UserStore {
	t.Helper()

	hash, err := auth.BcryptHasher{Cost: bcrypt.MinCost}.HashPassword(password)
	require.NoError(t, err)

	argonHash, err := auth.Argon2Hasher{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}.HashPassword(password)
	require.NoError(t, err)

	return auth.NewMemoryUserStore(
		auth.UserRecord{ID: "admin-1", Email: "admin@example.com", PasswordHash: hash, Roles: []string{auth.RoleAdmin}, Active: true},
		auth.UserRecord{ID: "mgr-1", Email: "manager@example.com", PasswordHash: argonHash, Roles: []string{auth.RoleManagerBranch}, StoreID: "store-1", Active: true},
	)
}

func testServer(t *testing.T, policy jwtware.TransportPolicy) (*fiber.App, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := newServer(testConfig(policy), testStore(t), log, reg)
	require.NoError(t, err)
	return app, reg
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, mutate ...func(*http.Request)) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for _, m := range mutate {
		m(req)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func tokenCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == jwtware.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", jwtware.DefaultCookieName)
	return nil
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
}

func TestServer_ProdCookieFlow(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookie)

	resp := doJSON(t, app, fiber.MethodPost, "/login", map[string]string{
		"email":    "Admin@Example.com",
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := tokenCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure, "cookie is secure under the cookie only policy")
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 24*3600, cookie.MaxAge)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "data", "token is not echoed in the body")

	resp = doJSON(t, app, fiber.MethodGet, "/me", nil, withCookie(cookie))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "admin-1", me["id"])

	resp = doJSON(t, app, fiber.MethodGet, "/admin/ping", nil, withCookie(cookie))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/logout", nil, withCookie(cookie))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cleared := tokenCookie(t, resp)
	assert.True(t, cleared.MaxAge < 0 || cleared.Expires.Before(time.Now()))
}

func TestServer_ProdRejectsHeaderToken(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookie)

	resp := doJSON(t, app, fiber.MethodPost, "/login", map[string]string{
		"email":    "admin@example.com",
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := tokenCookie(t, resp)

	// the encrypted cookie value is not a JWT and headers are ignored anyway
	resp = doJSON(t, app, fiber.MethodGet, "/me", nil, withBearer(cookie.Value))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, string(auth.KindUnauthenticated), body["errorCode"])
}

func TestServer_ProdRejectsUnencryptedCookie(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookie)

	resp := doJSON(t, app, fiber.MethodGet, "/me", nil, withCookie(&http.Cookie{Name: "token", Value: "not-encrypted"}))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServer_DevHeaderFlow(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookieOrHeader)

	resp := doJSON(t, app, fiber.MethodPost, "/login", map[string]string{
		"email":    "manager@example.com",
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "dev login echoes the token")
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	resp = doJSON(t, app, fiber.MethodGet, "/me", nil, withBearer(token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "mgr-1", me["id"])
	assert.Equal(t, "store-1", me["storeId"])

	resp = doJSON(t, app, fiber.MethodGet, "/admin/ping", nil, withBearer(token))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, string(auth.KindForbidden), decode(t, resp)["errorCode"])

	resp = doJSON(t, app, fiber.MethodGet, "/stores/store-1/ping", nil, withBearer(token))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/stores/store-2/ping", nil, withBearer(token))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestServer_LoginFailures(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookie)

	tests := []struct {
		name   string
		body   any
		status int
		code   auth.ErrorKind
	}{
		{"unknown user", map[string]string{"email": "ghost@example.com", "password": password}, fiber.StatusNotFound, auth.KindUserNotFound},
		{"wrong password", map[string]string{"email": "admin@example.com", "password": "nope"}, fiber.StatusUnauthorized, auth.KindInvalidPassword},
		{"bad email", map[string]string{"email": "not-an-email", "password": password}, fiber.StatusBadRequest, auth.KindBadRequest},
		{"missing password", map[string]string{"email": "admin@example.com"}, fiber.StatusBadRequest, auth.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, fiber.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, string(tt.code), body["errorCode"])
		})
	}
}

func TestServer_UnknownRouteUsesEnvelope(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookie)

	resp := doJSON(t, app, fiber.MethodGet, "/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(auth.KindNotFound), decode(t, resp)["errorCode"])
}

func TestServer_Metrics(t *testing.T) {
	app, _ := testServer(t, jwtware.PolicyCookie)

	doJSON(t, app, fiber.MethodPost, "/login", map[string]string{"email": "admin@example.com", "password": "nope"}).Body.Close()
	doJSON(t, app, fiber.MethodGet, "/me", nil).Body.Close()

	resp := doJSON(t, app, fiber.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(raw)

	assert.True(t, strings.Contains(text, `retail_auth_events_total{event="auth.login.failure",kind="INVALID_PASSWORD"} 1`), text)
	assert.True(t, strings.Contains(text, `retail_auth_events_total{event="auth.access.denied",kind="UNAUTHENTICATED"} 1`), text)
}
