// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/config"
	"codeberg.org/oliverandrich/greengrocer/internal/database"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"codeberg.org/oliverandrich/greengrocer/internal/server"
	"codeberg.org/oliverandrich/greengrocer/internal/services/auth"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// withDB opens the database named by --database-dsn and runs fn.
func withDB(cmd *cli.Command, fn func(db *sqlx.DB) error) error {
	server.SetupLogger("info", "text")
	db, err := database.Open(cmd.String("database-dsn"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()
	return fn(db)
}

func migrateCommand() *cli.Command {
	status := func(db *sqlx.DB) error {
		version, err := database.MigrationVersion(db.DB)
		if err != nil {
			return err
		}
		slog.Info("schema version", "version", version)
		return nil
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Flags: config.DatabaseFlags(),
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					// Opening the database applies pending migrations.
					return withDB(cmd, status)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withDB(cmd, func(db *sqlx.DB) error {
						if err := database.MigrateDown(db.DB); err != nil {
							return err
						}
						return status(db)
					})
				},
			},
			{
				Name:  "reset",
				Usage: "Roll back all migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withDB(cmd, func(db *sqlx.DB) error {
						if err := database.MigrateReset(db.DB); err != nil {
							return err
						}
						return status(db)
					})
				},
			},
			{
				Name:  "status",
				Usage: "Print the current schema version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withDB(cmd, status)
				},
			},
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Ensure an administrator account exists",
		Flags: append(config.DatabaseFlags(), config.AdminFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			email, password := cmd.String("admin-email"), cmd.String("admin-password")
			if email == "" || password == "" {
				return errors.New("--admin-email and --admin-password are required")
			}
			return withDB(cmd, func(db *sqlx.DB) error {
				svc := auth.NewService(repository.New(db), nil)
				return svc.EnsureAdmin(ctx, email, password)
			})
		},
	}
}

func sweepCodesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep-codes",
		Usage: "Delete expired verification codes once",
		Flags: append(config.DatabaseFlags(), config.OTPFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDB(cmd, func(db *sqlx.DB) error {
				store, err := server.OpenStore(ctx, &config.OTPConfig{
					Store:    cmd.String("otp-store"),
					RedisURL: cmd.String("otp-redis-url"),
				}, repository.New(db))
				if err != nil {
					return err
				}
				if closer, ok := store.(interface{ Close() error }); ok {
					defer func() { _ = closer.Close() }()
				}

				n, err := store.DeleteExpired(ctx, time.Now())
				if err != nil {
					return err
				}
				slog.Info("expired codes removed", "count", n)
				return nil
			})
		},
	}
}
