// Command retail-auth serves login, logout and guarded sample routes for
// the retail service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	auth "github.com/goliatone/go-retail-auth"
	"github.com/goliatone/go-retail-auth/config"
	"github.com/goliatone/go-retail-auth/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "retail-auth: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := config.NewLogger(cfg.Logging)
	log.Info("starting retail-auth",
		"environment", cfg.Environment,
		"policy", cfg.GetTransportPolicy().String(),
		"address", cfg.Address(),
	)
	log.Debug("effective configuration", "config", cfg.String())

	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := repository.Migrate(ctx, db, cfg.Database.Driver)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		log.Info("database migrated", "applied", applied)
	}

	repos := auth.NewRepositoryManager(db)
	repos.MustValidate()

	if cfg.Seed.AdminEmail != "" {
		seed := repository.NewSeedAdminHandler(repos, auth.BcryptHasher{},
			repository.WithSeedAdminCreated(func(user *auth.User) {
				log.Info("bootstrap admin created", "email", user.Email)
			}),
		)
		if err := seed.Execute(ctx, repository.SeedAdminMessage{
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
		}); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newServer(cfg, repos.Users(), log, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Address())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("shutdown failed", "error", err)
		return err
	}

	log.Info("retail-auth stopped")
	return nil
}

func componentLogger(log *slog.Logger, component string) auth.Logger {
	return auth.NewSlogLogger(log.With("component", component))
}
