package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/shared"
)

// Setup creates the config file when it is missing, then initializes the database and runs migrations.
// With --rollback it reverts the latest migration instead.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		m, err := shared.RollbackMigration(db)
		if err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ Rolled back migration %04d (%s)\n", m.Version, m.Name)
		return nil
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Database: %s\n", config.Database.Path)
	if config.OAuth.ClientSecret == "" {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set oauth.client_secret in %s (or FLOODY_OAUTH_CLIENT_SECRET)\n", configPath)
		r.writePlain("2. Run 'floody auth login' to sign in\n")
	}
	return nil
}
