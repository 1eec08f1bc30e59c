// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/config"
	"codeberg.org/oliverandrich/greengrocer/internal/database"
	"codeberg.org/oliverandrich/greengrocer/internal/handlers"
	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"codeberg.org/oliverandrich/greengrocer/internal/services/auth"
	"codeberg.org/oliverandrich/greengrocer/internal/services/catalog"
	"codeberg.org/oliverandrich/greengrocer/internal/services/email"
	"codeberg.org/oliverandrich/greengrocer/internal/services/media"
	"codeberg.org/oliverandrich/greengrocer/internal/services/otp"
	"codeberg.org/oliverandrich/greengrocer/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// App is a fully wired application.
type App struct {
	Echo    *echo.Echo
	cfg     *config.Config
	db      *sqlx.DB
	store   otp.Store
	sweeper *otp.Sweeper
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.startWithGracefulShutdown()
}

// New opens the database and builds every service and route.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app := &App{cfg: cfg, db: db}

	if err := app.build(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	repo := repository.New(a.db)

	store, err := OpenStore(ctx, &cfg.OTP, repo)
	if err != nil {
		return err
	}
	a.store = store

	tickets, err := otp.NewTickets(cfg.Auth.TokenSecret, 0)
	if err != nil {
		return err
	}

	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		slog.Warn("email delivery disabled", "error", err)
		mailer = email.NewServiceWithTransport(&cfg.SMTP, email.Unavailable, cfg.Server.BaseURL)
	}

	otpSvc := otp.NewService(store, mailer, tickets, otp.Options{TTL: cfg.OTP.TTL})
	authSvc := auth.NewService(repo, tickets)
	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return err
		}
	}

	var uploader handlers.ImageUploader
	if cfg.Media.Enabled() {
		u, err := media.NewUploader(ctx, &cfg.Media)
		if err != nil {
			return fmt.Errorf("failed to configure media uploads: %w", err)
		}
		uploader = u
	} else {
		slog.Info("image uploads disabled, no media bucket configured")
	}

	sessions, err := session.NewManager(&cfg.Session, strings.HasPrefix(cfg.Server.BaseURL, "https://"))
	if err != nil {
		return err
	}

	if cfg.OTP.SweepSchedule != "" {
		sweeper, err := otp.NewSweeper(store, cfg.OTP.SweepSchedule)
		if err != nil {
			return err
		}
		a.sweeper = sweeper
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	setupMiddleware(e, cfg, findAssets(), sessions, repo)

	catalogSvc := catalog.NewService(repo)
	setupRoutes(e, routes{
		pages:   handlers.New(catalogSvc, cfg.OTP.Cooldown, uploader != nil),
		auth:    handlers.NewAuth(authSvc, otpSvc, sessions),
		fruits:  handlers.NewFruits(catalogSvc, uploader),
		contact: handlers.NewContact(mailer, cfg.Contact.OperatorEmail),
	})

	a.Echo = e
	return nil
}

// OpenStore returns the verification code store selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.OTPConfig, repo *repository.Repository) (otp.Store, error) {
	switch cfg.Store {
	case "memory":
		return otp.NewMemoryStore(), nil
	case "redis":
		store, err := otp.OpenRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis code store: %w", err)
		}
		return store, nil
	case "", "sql":
		return otp.NewSQLStore(repo), nil
	default:
		return nil, fmt.Errorf("unknown otp store %q", cfg.Store)
	}
}

// Close releases the database and the code store.
func (a *App) Close() {
	if a.sweeper != nil {
		<-a.sweeper.Stop().Done()
	}
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("failed to close code store", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}

func (a *App) startWithGracefulShutdown() error {
	if a.sweeper != nil {
		a.sweeper.Start()
	}

	errChan := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", a.cfg.Server.BaseURL)
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
