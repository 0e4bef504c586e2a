package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/formatter"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
)

// listing renders a command result as JSON when --json is set, otherwise in --format, to --output or stdout.
type listing struct {
	json   bool
	pretty bool
	format formatter.Format
	output string
}

func parseListing(cmd *cli.Command) (listing, error) {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return listing{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return listing{
		json:   cmd.Bool("json"),
		pretty: cmd.Bool("pretty"),
		format: format,
		output: cmd.String("output"),
	}, nil
}

func (r *Runner) emit(l listing, data any, render func(formatter.Format) ([]byte, error)) error {
	if l.json {
		if l.output == "" {
			return r.writeJSON(data, l.pretty)
		}
		out, err := shared.MarshalJSON(data, l.pretty)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return r.writeFormatted(append(out, '\n'), l.output)
	}

	out, err := render(l.format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return r.writeFormatted(out, l.output)
}

// Files lists the recently modified sheets.
func (r *Runner) Files(ctx context.Context, cmd *cli.Command) error {
	l, err := parseListing(cmd)
	if err != nil {
		return err
	}
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	files, err := s.loader.LoadRecentFiles(ctx)
	if err != nil {
		return err
	}
	return r.emit(l, files, func(f formatter.Format) ([]byte, error) {
		return formatter.RecentFiles(files, f)
	})
}

// Profiles lists the user's Campaign Manager profiles.
func (r *Runner) Profiles(ctx context.Context, cmd *cli.Command) error {
	l, err := parseListing(cmd)
	if err != nil {
		return err
	}
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	profiles, err := s.loader.LoadProfiles(ctx)
	if err != nil {
		return err
	}
	return r.emit(l, profiles, func(f formatter.Format) ([]byte, error) {
		return formatter.DcmObjects("Profiles", profiles, f)
	})
}

// profileArg returns --profile or the persisted profile id.
func (r *Runner) profileArg(cmd *cli.Command, s *session) (string, error) {
	if profile := cmd.String("profile"); profile != "" {
		return profile, nil
	}
	if profile := s.actions.ProfileID(); profile != "" {
		return profile, nil
	}
	return "", fmt.Errorf("%w: --profile (no stored profile)", shared.ErrMissingArgument)
}

// Accounts lists the accounts of a profile without changing the stored profile.
func (r *Runner) Accounts(ctx context.Context, cmd *cli.Command) error {
	l, err := parseListing(cmd)
	if err != nil {
		return err
	}
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}
	profile, err := r.profileArg(cmd, s)
	if err != nil {
		return err
	}

	s.store.SelectProfile(profile)
	if err := s.loader.LoadAccounts(ctx); err != nil {
		return err
	}

	accounts := s.store.Snapshot().Accounts
	return r.emit(l, accounts, func(f formatter.Format) ([]byte, error) {
		return formatter.DcmObjects("Accounts", accounts, f)
	})
}

// Configs lists the floodlight configurations of an account.
func (r *Runner) Configs(ctx context.Context, cmd *cli.Command) error {
	l, err := parseListing(cmd)
	if err != nil {
		return err
	}
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}
	profile, err := r.profileArg(cmd, s)
	if err != nil {
		return err
	}

	s.store.SelectProfile(profile)
	if err := s.loader.SelectAccount(ctx, cmd.String("account")); err != nil {
		return err
	}

	configs := s.store.Snapshot().FloodlightConfigs
	return r.emit(l, configs, func(f formatter.Format) ([]byte, error) {
		return formatter.DcmObjects("Floodlight configurations", configs, f)
	})
}

// Create selects the profile, account and floodlight configuration the way the create form does, then creates the sheet.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	if err := s.loader.SelectProfile(ctx, cmd.String("profile")); err != nil {
		return err
	}
	if account := cmd.String("account"); account != "" {
		if err := s.loader.SelectAccount(ctx, account); err != nil {
			return err
		}
	}
	config := cmd.String("config")
	if configs := s.store.Snapshot().FloodlightConfigs; !containsID(configs, config) {
		r.logger.Warn("floodlight configuration not listed for account", "config", config, "available", len(configs))
	}
	s.store.SelectFloodlightConfig(config)

	sheet, err := s.actions.CreateSpreadsheet(ctx)
	if err != nil {
		return err
	}

	if _, err := s.actions.CheckUserAuth(ctx, sheet.ID); err != nil {
		r.logger.Warn("failed to check sheet access", "sheet", sheet.ID, "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(sheet, true)
	}

	r.writePlain("✓ Created %s\n", sheet.Name)
	r.writePlain("ID: %s\n", sheet.ID)
	if sheet.Link != "" {
		r.writePlain("Link: %s\n", sheet.Link)
	}
	return nil
}

func containsID(items []models.DcmObject, id string) bool {
	for _, item := range items {
		if item.ID.String() == id {
			return true
		}
	}
	return false
}
