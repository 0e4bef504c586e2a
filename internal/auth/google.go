package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/server"
	"github.com/desertthunder/floody/internal/shared"
)

const (
	googleProvider     = "google"
	defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// TokenStore persists the OAuth token between runs. Implemented by the sqlite token repository.
type TokenStore interface {
	Get(provider string) (*models.OAuthToken, error)
	Save(token *models.OAuthToken) error
	Delete(provider string) error
}

// GoogleOptions configures a [GoogleProvider].
type GoogleOptions struct {
	ClientSecret string
	// CallbackAddr is the loopback host:port of the sign-in callback server.
	CallbackAddr string
	Tokens       TokenStore
	Logger       *log.Logger
	// OpenBrowser opens the consent page. Defaults to [shared.OpenBrowser].
	OpenBrowser func(url string) error
	// Endpoint defaults to [google.Endpoint].
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// GoogleProvider implements [IdentityProvider] with Google OAuth 2.0.
type GoogleProvider struct {
	opts   GoogleOptions
	logger *log.Logger

	mu        sync.Mutex
	config    *oauth2.Config
	token     *oauth2.Token
	idToken   string
	listeners []func(bool)
}

// NewGoogleProvider creates a new [GoogleProvider].
func NewGoogleProvider(opts GoogleOptions) *GoogleProvider {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Endpoint.TokenURL == "" {
		opts.Endpoint = google.Endpoint
	}
	if opts.UserInfoURL == "" {
		opts.UserInfoURL = defaultUserInfoURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &GoogleProvider{opts: opts, logger: shared.WithLogger(opts.Logger, "component", "google")}
}

// Init builds the OAuth config and restores a persisted token.
func (p *GoogleProvider) Init(ctx context.Context, clientID string, scopes []string) error {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: p.opts.ClientSecret,
		RedirectURL:  "http://" + p.opts.CallbackAddr + server.CallbackPath,
		Scopes:       scopes,
		Endpoint:     p.opts.Endpoint,
	}

	stored, err := p.opts.Tokens.Get(googleProvider)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load token: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = config
	if stored != nil {
		p.token = &oauth2.Token{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
			TokenType:    stored.TokenType,
			Expiry:       stored.Expiry,
		}
		p.idToken = stored.IDToken
		p.logger.Debug("restored token", "expiry", stored.Expiry)
	}
	return nil
}

// Listen registers fn for sign-in state changes.
func (p *GoogleProvider) Listen(fn func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *GoogleProvider) emit(signedIn bool) {
	p.mu.Lock()
	listeners := append([]func(bool){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(signedIn)
	}
}

// IsSignedIn reports whether a usable token is held: a valid access token or a refresh token.
func (p *GoogleProvider) IsSignedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token != nil && (p.token.Valid() || p.token.RefreshToken != "")
}

// SignIn runs the authorization code flow through the local callback server.
func (p *GoogleProvider) SignIn(ctx context.Context) error {
	p.mu.Lock()
	config := p.config
	p.mu.Unlock()
	if config == nil {
		return fmt.Errorf("%w: provider not initialised", shared.ErrMissingConfig)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.opts.HTTPClient)
	token, err := server.RunCallback(ctx, server.CallbackOptions{
		Addr:    p.opts.CallbackAddr,
		Config:  config,
		Timeout: p.opts.Timeout,
		Logger:  p.logger,
		OnAuthURL: func(url string) {
			if err := p.opts.OpenBrowser(url); err != nil {
				p.logger.Warn("could not open browser automatically", "error", err)
				p.logger.Info("open this URL to sign in", "url", url)
			}
		},
	})
	if err != nil {
		return err
	}

	if err := p.store(token); err != nil {
		return err
	}

	p.emit(true)
	return nil
}

// store keeps token in memory and persists it, carrying over an ID token the refresh response omitted.
func (p *GoogleProvider) store(token *oauth2.Token) error {
	idToken, _ := token.Extra("id_token").(string)

	p.mu.Lock()
	p.token = token
	if idToken != "" {
		p.idToken = idToken
	}
	idToken = p.idToken
	p.mu.Unlock()

	return p.opts.Tokens.Save(&models.OAuthToken{
		Provider:     googleProvider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		IDToken:      idToken,
		Expiry:       token.Expiry,
	})
}

// SignOut forgets and deletes the persisted token.
func (p *GoogleProvider) SignOut(ctx context.Context) error {
	if err := p.opts.Tokens.Delete(googleProvider); err != nil {
		return err
	}

	p.mu.Lock()
	p.token = nil
	p.idToken = ""
	p.mu.Unlock()

	p.emit(false)
	return nil
}

// AccessToken returns a valid access token, refreshing and persisting it when expired.
func (p *GoogleProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	config, current := p.config, p.token
	p.mu.Unlock()

	if config == nil || current == nil {
		return "", shared.ErrNotAuthenticated
	}
	if current.Valid() {
		return current.AccessToken, nil
	}
	if current.RefreshToken == "" {
		return "", shared.ErrTokenExpired
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.opts.HTTPClient)
	fresh, err := config.TokenSource(ctx, current).Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrTokenExpired, err)
	}

	if err := p.store(fresh); err != nil {
		p.logger.Warn("failed to persist refreshed token", "error", err)
	}
	return fresh.AccessToken, nil
}

// identityClaims are the OpenID Connect claims used for the header badge.
type identityClaims struct {
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// CurrentUser reads email and picture from the ID token and falls back to the userinfo endpoint.
//
// The ID token is parsed without signature verification: it was received directly from Google's token endpoint over TLS and is only used for display.
func (p *GoogleProvider) CurrentUser(ctx context.Context) (User, error) {
	p.mu.Lock()
	idToken := p.idToken
	p.mu.Unlock()

	if idToken != "" {
		var claims identityClaims
		if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err == nil && claims.Email != "" {
			return User{Email: claims.Email, Picture: claims.Picture}, nil
		} else if err != nil {
			p.logger.Debug("unreadable id token", "error", err)
		}
	}

	return p.userInfo(ctx)
}

func (p *GoogleProvider) userInfo(ctx context.Context) (User, error) {
	token, err := p.AccessToken(ctx)
	if err != nil {
		return User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.UserInfoURL, nil)
	if err != nil {
		return User{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return User{}, fmt.Errorf("%w: userinfo status %d: %s", shared.ErrAPIRequest, resp.StatusCode, body)
	}

	var info identityClaims
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return User{}, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return User{Email: info.Email, Picture: info.Picture}, nil
}
