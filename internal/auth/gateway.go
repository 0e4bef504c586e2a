package auth

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
	"github.com/desertthunder/floody/internal/store"
)

// GatewayOptions configures a [Gateway].
type GatewayOptions struct {
	Store    *store.Store
	Provider IdentityProvider
	Backend  ClientIDSource
	Prefs    Preferences
	// ClientID skips the backend lookup when set.
	ClientID string
	Logger   *log.Logger
}

// Gateway translates identity provider signals into session store updates.
type Gateway struct {
	store    *store.Store
	provider IdentityProvider
	backend  ClientIDSource
	prefs    Preferences
	clientID string
	logger   *log.Logger

	mu  sync.Mutex
	ctx context.Context
	// consentChecked is set once the notice has been offered in this process; it is never persisted.
	consentChecked bool
}

// NewGateway creates a new [Gateway].
func NewGateway(opts GatewayOptions) *Gateway {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Gateway{
		store:    opts.Store,
		provider: opts.Provider,
		backend:  opts.Backend,
		prefs:    opts.Prefs,
		clientID: opts.ClientID,
		logger:   shared.WithLogger(opts.Logger, "component", "auth"),
		ctx:      context.Background(),
	}
}

// Init fetches the client id, initialises the provider, subscribes to its signal and delivers the current state once.
//
// ctx bounds the identity loads triggered by later sign-in signals.
func (g *Gateway) Init(ctx context.Context) error {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()

	clientID := g.clientID
	if clientID == "" {
		id, err := g.backend.ClientID(ctx)
		if err != nil {
			g.store.ReportError(err)
			return fmt.Errorf("failed to fetch client id: %w", err)
		}
		clientID = id
	}
	if clientID == "" {
		return fmt.Errorf("%w: backend returned an empty client id", shared.ErrMissingCredentials)
	}
	g.store.SetClientID(clientID)

	if err := g.provider.Init(ctx, clientID, Scopes); err != nil {
		return fmt.Errorf("failed to initialise identity provider: %w", err)
	}

	g.provider.Listen(g.UpdateSigninStatus)
	g.UpdateSigninStatus(g.provider.IsSignedIn())
	return nil
}

// UpdateSigninStatus applies a provider signal.
//
// A repeated true while already signed in does nothing, so the identity load and the FILESELECT route change happen exactly once per sign-in.
func (g *Gateway) UpdateSigninStatus(signedIn bool) {
	if !signedIn {
		g.store.SetSignedIn(false)
		if err := g.store.SetRoute(store.Homepage); err != nil {
			g.logger.Error("route", "error", err)
		}
		return
	}

	if !g.store.SetSignedIn(true) {
		return
	}

	g.mu.Lock()
	offer := !g.consentChecked
	g.consentChecked = true
	g.mu.Unlock()
	if offer {
		g.store.Notify(store.EventShowConsent)
	}

	g.loadUserDetails()

	if err := g.store.SetRoute(store.FileSelect); err != nil {
		g.logger.Error("route", "error", err)
	}
	g.store.Notify(store.EventSignedIn)
}

func (g *Gateway) loadUserDetails() {
	g.mu.Lock()
	ctx := g.ctx
	g.mu.Unlock()

	user, err := g.provider.CurrentUser(ctx)
	if err != nil {
		g.logger.Warn("failed to load user details", "error", err)
		return
	}
	g.logger.Info("signed in", "email", user.Email)
	g.store.SetIdentity(user.Email, user.Picture)
}

// SignIn starts the provider's interactive sign-in. The resulting signal updates the store.
func (g *Gateway) SignIn(ctx context.Context) error {
	if err := g.provider.SignIn(ctx); err != nil {
		g.store.ReportError(err)
		return err
	}
	return nil
}

// SignOut signs out of the provider, removes the persisted profile id, forgets that the consent notice was offered, resets the in-memory session and routes home.
func (g *Gateway) SignOut(ctx context.Context) error {
	if err := g.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	if err := g.prefs.Remove(models.PrefProfileID); err != nil {
		return fmt.Errorf("failed to clear session keys: %w", err)
	}

	g.mu.Lock()
	g.consentChecked = false
	g.mu.Unlock()

	g.store.Reset()
	return g.store.SetRoute(store.Homepage)
}
