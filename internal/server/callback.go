package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/floody/internal/shared"
)

// CallbackOptions configures [RunCallback].
type CallbackOptions struct {
	Addr    string
	Config  *oauth2.Config
	Timeout time.Duration
	Logger  *log.Logger
	// OnAuthURL is called once the listener is ready. It usually opens the browser.
	OnAuthURL func(url string)
}

// RunCallback serves the OAuth callback on a temporary local server until a token arrives, the timeout passes or ctx is cancelled.
func RunCallback(ctx context.Context, opts CallbackOptions) (*oauth2.Token, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := NewOAuthHandler(opts.Config, state, oauth2.GenerateVerifier())
	router := NewBasicRouter()
	router.Use(Logging(opts.Logger))
	router.Handle(http.MethodGet, CallbackPath, handler)

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		opts.Logger.Info("starting OAuth callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Warn("error shutting down server", "error", err)
		}
	}()

	if opts.OnAuthURL != nil {
		opts.OnAuthURL(handler.AuthCodeURL())
	}

	timeout := time.NewTimer(opts.Timeout)
	defer timeout.Stop()

	var result OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, opts.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
