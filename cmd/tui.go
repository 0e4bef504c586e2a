package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/shared"
	"github.com/desertthunder/floody/internal/ui"
)

// TUI launches the interactive client. --sheet opens the manage page and --gtm a GTM request.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	sheetID := cmd.String("sheet")
	requestID := cmd.String("gtm")
	if sheetID != "" && requestID != "" {
		return fmt.Errorf("%w: --sheet and --gtm are mutually exclusive", shared.ErrInvalidArgument)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.TUIFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	s, err := r.open()
	if err != nil {
		return err
	}

	opts := ui.Options{Page: ui.PageMain}
	switch {
	case sheetID != "":
		opts = ui.Options{Page: ui.PageManage, SheetID: sheetID}
	case requestID != "":
		opts = ui.Options{Page: ui.PageGtm, RequestID: requestID}
	}

	model := ui.NewModel(ctx, ui.Deps{
		Store:   s.store,
		Gateway: s.gateway,
		Loader:  s.loader,
		Actions: s.actions,
		Consent: s.consent,
		Logger:  fileLogger,
	}, opts)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
