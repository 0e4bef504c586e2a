package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/actions"
	"github.com/desertthunder/floody/internal/shared"
)

// splitAll flattens repeated and comma separated flag values.
func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, shared.SplitList(v)...)
	}
	return out
}

// SheetAuth reports the signed-in user's access to a sheet and stores the first valid profile.
func (r *Runner) SheetAuth(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	resp, err := s.actions.CheckUserAuth(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(resp, true)
	}

	r.writePlainHeader(resp.SpreadsheetInformation.Name)
	r.writePlain("Access: %s\n", resp.Status)
	if help := resp.Status.HelpMessage(); help != "" {
		r.writePlain("%s\n", help)
	}
	if info := resp.DcmInformation; info != nil {
		r.writePlain("Account: %s\n", info.AccountID)
	}
	if len(resp.UserDcmProfiles) > 0 {
		r.writePlainln("Valid profiles:")
		for _, p := range resp.UserDcmProfiles {
			r.writePlain("  %s\n", p.Label())
		}
	}
	return nil
}

// SheetShare shares a sheet with users and groups.
func (r *Runner) SheetShare(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	users := splitAll(cmd.StringSlice("user"))
	groups := splitAll(cmd.StringSlice("group"))
	if len(users) == 0 && len(groups) == 0 {
		return fmt.Errorf("%w: --user or --group", shared.ErrMissingArgument)
	}
	if err := s.actions.Share(ctx, cmd.String("id"), users, groups); err != nil {
		return err
	}
	return r.writePlain("✓ Shared with %s\n", strings.Join(append(users, groups...), ", "))
}

// SheetExport pushes the sheet's activities to Campaign Manager.
func (r *Runner) SheetExport(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", actions.MsgExporting)
	result, err := s.actions.ExportToDcm(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", report(result, "Export complete"))
}

// SheetImport refreshes the sheet from Campaign Manager.
func (r *Runner) SheetImport(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", actions.MsgImporting)
	result, err := s.actions.ImportFromDcm(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", report(result, "Import complete"))
}

// SheetAddRows appends empty rows to the sheet.
func (r *Runner) SheetAddRows(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	if err := s.actions.AddRows(ctx, cmd.String("id")); err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", actions.MsgRowsAdded)
}

// SheetRename changes the sheet title.
func (r *Runner) SheetRename(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	sheet, err := s.actions.RenameSheet(ctx, cmd.String("id"), cmd.String("title"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Renamed to %s\n", s.store.Snapshot().ActionBar.SpreadsheetTitle+linkSuffix(sheet.Link))
}

// report returns the backend's report text, or fallback when it is blank.
func report(text, fallback string) string {
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	return fallback
}

func linkSuffix(link string) string {
	if link == "" {
		return ""
	}
	return " (" + link + ")"
}
