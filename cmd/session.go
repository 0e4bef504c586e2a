package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/desertthunder/floody/internal/actions"
	"github.com/desertthunder/floody/internal/auth"
	"github.com/desertthunder/floody/internal/floody"
	"github.com/desertthunder/floody/internal/loader"
	"github.com/desertthunder/floody/internal/repositories"
	"github.com/desertthunder/floody/internal/shared"
	"github.com/desertthunder/floody/internal/store"
)

// session wires the store, backend client and identity provider over one database.
type session struct {
	db       *sql.DB
	store    *store.Store
	prefs    *repositories.PreferenceRepository
	tokens   *repositories.TokenRepository
	client   *floody.Client
	provider auth.IdentityProvider
	gateway  *auth.Gateway
	loader   *loader.Loader
	actions  *actions.Handlers
	consent  *auth.Consent
}

// open builds the session once per process. The database is migrated on first use.
func (r *Runner) open() (*session, error) {
	if r.session != nil {
		return r.session, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &session{
		db:     db,
		store:  store.New(r.logger),
		prefs:  repositories.NewPreferenceRepository(db),
		tokens: repositories.NewTokenRepository(db),
	}

	httpClient := &http.Client{
		Transport: r.httpClient.Transport,
		Timeout:   r.config.Floody.RequestTimeout(),
	}

	s.provider = r.provider
	if s.provider == nil {
		s.provider = auth.NewGoogleProvider(auth.GoogleOptions{
			ClientSecret: r.config.OAuth.ClientSecret,
			CallbackAddr: r.config.Server.Addr(),
			Tokens:       s.tokens,
			Logger:       r.logger,
			HTTPClient:   httpClient,
		})
	}

	s.client = floody.NewClient(floody.Options{
		BaseURL:     r.config.Floody.Endpoint,
		HTTPClient:  httpClient,
		Credentials: auth.Credentials{Tokens: s.provider, Prefs: s.prefs},
		RateLimit:   r.config.Floody.RateLimit,
		Logger:      r.logger,
	})

	s.gateway = auth.NewGateway(auth.GatewayOptions{
		Store:    s.store,
		Provider: s.provider,
		Backend:  s.client,
		Prefs:    s.prefs,
		ClientID: r.config.OAuth.ClientID,
		Logger:   r.logger,
	})
	s.loader = loader.New(loader.Options{Store: s.store, Backend: s.client, Prefs: s.prefs, Logger: r.logger})
	s.actions = actions.New(actions.Options{Store: s.store, Backend: s.client, Prefs: s.prefs, Logger: r.logger})
	s.consent = auth.NewConsent(s.prefs)

	r.session = s
	return s, nil
}

// connect opens the session and initialises the auth gateway.
func (r *Runner) connect(ctx context.Context) (*session, error) {
	s, err := r.open()
	if err != nil {
		return nil, err
	}
	if err := s.gateway.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// signedIn connects and fails with [shared.ErrNotAuthenticated] when there is no stored sign-in.
func (r *Runner) signedIn(ctx context.Context) (*session, error) {
	s, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	if !s.store.IsSignedIn() {
		return nil, fmt.Errorf("%w: run 'floody auth login' first", shared.ErrNotAuthenticated)
	}
	return s, nil
}
