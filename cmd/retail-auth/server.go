package main

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"

	auth "github.com/goliatone/go-retail-auth"
	"github.com/goliatone/go-retail-auth/activitymap"
	"github.com/goliatone/go-retail-auth/config"
	"github.com/goliatone/go-retail-auth/metrics"
)

// newServer wires the auth components into a fiber app. It does not
// start listening.
func newServer(cfg *config.Config, store auth.UserStore, log *slog.Logger, reg *prometheus.Registry) (*fiber.App, error) {
	authLogger := componentLogger(log, "auth")
	httpLogger := componentLogger(log, "http")

	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, err
	}

	sink := auth.MultiActivitySink{
		collector,
		activitymap.LogSink{Logger: componentLogger(log, "audit")},
	}

	auther := auth.NewAuthenticator(store, auth.NewMultiVerifier(), cfg).
		WithLogger(authLogger).
		WithActivitySink(sink)

	routeAuth := auth.NewHTTPAuthenticator(auther, cfg).
		WithLogger(httpLogger).
		WithActivitySink(sink)

	controller := auth.NewAuthController(routeAuth)

	app := fiber.New(fiber.Config{
		AppName:               "retail-auth",
		ErrorHandler:          auth.ErrorHandler(httpLogger),
		ReadTimeout:           cfg.GetReadTimeout(),
		WriteTimeout:          cfg.GetWriteTimeout(),
		IdleTimeout:           cfg.GetIdleTimeout(),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cfg.Cookie.Secret,
	}))

	app.Get("/metrics", metrics.Handler(reg))

	auth.RegisterAuthRoutes(app, controller)

	app.Get("/admin/ping",
		routeAuth.ProtectedRoute(auth.AuthorizationOptions{RequiredRoles: []string{auth.RoleAdmin}}),
		pingHandler,
	).Name("admin.ping")

	app.Get("/stores/:storeId/ping",
		routeAuth.ProtectedRoute(auth.AuthorizationOptions{StoreParam: "storeId"}),
		pingHandler,
	).Name("stores.ping")

	return app, nil
}

func pingHandler(c *fiber.Ctx) error {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		return auth.ErrUnauthenticated
	}
	return c.JSON(auth.Envelope{
		Success: true,
		Message: "pong",
		Data:    auth.NewPrincipalView(p),
	})
}
