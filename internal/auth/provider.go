package auth

import "context"

// Scopes are requested on every sign-in.
var Scopes = []string{
	"email",
	"profile",
	"https://www.googleapis.com/auth/dfatrafficking",
	"https://www.googleapis.com/auth/tagmanager.edit.containers",
}

// User is the signed-in identity shown in the header badge.
type User struct {
	Email   string
	Picture string
}

// IdentityProvider is the surface of an OAuth identity library.
type IdentityProvider interface {
	// Init configures the provider for clientID and scopes and restores any persisted session.
	Init(ctx context.Context, clientID string, scopes []string) error
	// Listen registers fn to be called with the new state whenever sign-in state changes.
	Listen(fn func(signedIn bool))
	IsSignedIn() bool
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (User, error)
	AccessToken(ctx context.Context) (string, error)
}

// ClientIDSource publishes the OAuth client id. Implemented by the backend client.
type ClientIDSource interface {
	ClientID(ctx context.Context) (string, error)
}

// Preferences stores the session keys that replace browser storage.
type Preferences interface {
	Value(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}
