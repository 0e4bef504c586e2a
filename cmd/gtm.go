package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/actions"
	"github.com/desertthunder/floody/internal/formatter"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
)

// GtmRequest submits a GTM export request for approval.
func (r *Runner) GtmRequest(ctx context.Context, cmd *cli.Command) error {
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	resp, err := s.actions.SubmitGtmRequest(ctx, cmd.String("sheet"), actions.GtmSubmission{
		ContainerID: cmd.String("container"),
		Message:     cmd.String("message"),
		Approvers:   splitAll(cmd.StringSlice("approver")),
	})
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(resp, true)
	}

	if !resp.Status.Success {
		return fmt.Errorf("%w: %s", shared.ErrGtmRequestFailed, resp.Status.ErrorMessage)
	}
	r.writePlain("✓ GTM request %s submitted\n", resp.RequestID)
	if resp.RequestURI != "" {
		r.writePlain("Approvers can review it at %s\n", resp.RequestURI)
	}
	return nil
}

// GtmShow prints a stored GTM request.
func (r *Runner) GtmShow(ctx context.Context, cmd *cli.Command) error {
	l, err := parseListing(cmd)
	if err != nil {
		return err
	}
	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	req, err := s.actions.LoadGtmRequest(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	return r.emit(l, req, func(f formatter.Format) ([]byte, error) {
		return formatter.GtmRequest(req, f)
	})
}

// GtmAction approves or rejects a GTM request; the subcommand name is the action.
func (r *Runner) GtmAction(ctx context.Context, cmd *cli.Command) error {
	action, ok := models.ParseGtmAction(cmd.Name)
	if !ok {
		return fmt.Errorf("%w: unknown GTM action %q", shared.ErrInvalidArgument, cmd.Name)
	}

	s, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	res, err := s.actions.SendGtmAction(ctx, cmd.String("id"), action, cmd.String("comment"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	if _, err := r.output.Write(formatter.GtmResults(res)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if failed := res.Failed(); !res.Success || len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d tags failed", shared.ErrGtmRequestFailed, len(failed), len(res.GtmTagOperationResult))
	}
	return nil
}
