package auth

import (
	"context"

	"github.com/desertthunder/floody/internal/models"
)

// TokenProvider returns the current access token.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Credentials adapts a token provider and the persisted profile id to the backend client's credentials.
type Credentials struct {
	Tokens TokenProvider
	Prefs  Preferences
}

// AccessToken returns the provider's access token.
func (c Credentials) AccessToken(ctx context.Context) (string, error) {
	return c.Tokens.AccessToken(ctx)
}

// ProfileID returns the persisted profile id, or "" when none is stored.
func (c Credentials) ProfileID() string {
	v, ok, err := c.Prefs.Value(models.PrefProfileID)
	if err != nil || !ok {
		return ""
	}
	return v
}
