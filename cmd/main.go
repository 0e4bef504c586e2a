package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/shared"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("FLOODY_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	} else if err := shared.ApplyEnv(config); err != nil {
		logger.Fatalf("invalid environment: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "floody",
		Usage:    "Create and manage Floody floodlight spreadsheets from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrPrecondition) || errors.Is(err, shared.ErrIncompleteSelection) {
			fmt.Fprintln(os.Stderr, err)
			runner.Close()
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
