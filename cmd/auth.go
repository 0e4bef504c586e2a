package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/auth"
	"github.com/desertthunder/floody/internal/shared"
)

// AuthLogin runs the browser sign-in and shows the product counsel notice when it is due.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect(ctx)
	if err != nil {
		return err
	}

	if !s.store.IsSignedIn() {
		r.logger.Info("starting sign-in", "client_id", s.store.ClientID())
		if err := s.gateway.SignIn(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		if !s.store.IsSignedIn() {
			return fmt.Errorf("%w: sign-in did not complete", shared.ErrAuthFailed)
		}
	}

	if shown, err := s.consent.ShowIfDue(time.Now()); err != nil {
		r.logger.Warn("failed to record consent", "error", err)
	} else if shown {
		r.writePlainHeader("Before you continue")
		for _, line := range auth.ConsentNotice {
			r.writePlain("%s\n", line)
		}
		r.writePlain("\n")
	}

	snap := s.store.Snapshot()
	if snap.Email == "" {
		return r.writePlain("✓ Signed in\n")
	}
	return r.writePlain("✓ Signed in as %s\n", snap.Email)
}

// AuthLogout revokes the stored token and clears the persisted profile and consent flag.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect(ctx)
	if err != nil {
		return err
	}

	if err := s.gateway.SignOut(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the signed-in identity, the stored profile and the backend heartbeat.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect(ctx)
	if err != nil {
		return err
	}

	snap := s.store.Snapshot()
	if !snap.IsSignedIn {
		return r.writePlain("✗ Not signed in\nRun 'floody auth login' to sign in.\n")
	}

	r.writePlain("✓ Signed in\n")
	if snap.Email != "" {
		r.writePlain("Email: %s\n", snap.Email)
	}
	if profile := s.actions.ProfileID(); profile != "" {
		r.writePlain("Profile: %s\n", profile)
	}

	beat, err := s.actions.Heartbeat(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return r.writePlain("Backend: ✓ reachable (%s)\n", beat.Timestamp)
}
