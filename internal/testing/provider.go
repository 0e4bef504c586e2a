package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/floody/internal/auth"
)

var _ auth.IdentityProvider = (*FakeProvider)(nil)

// FakeProvider is a scriptable [auth.IdentityProvider]. SignIn and SignOut flip the state and notify listeners synchronously.
type FakeProvider struct {
	mu        sync.Mutex
	signedIn  bool
	listeners []func(bool)

	ClientID string
	Scopes   []string
	Email    string
	Picture  string
	Token    string
	Err      error

	InitCalls        int
	CurrentUserCalls int
	SignOutCalls     int
}

func (f *FakeProvider) Init(_ context.Context, clientID string, scopes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InitCalls++
	f.ClientID = clientID
	f.Scopes = scopes
	return f.Err
}

func (f *FakeProvider) Listen(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *FakeProvider) IsSignedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signedIn
}

// SetSignedIn changes the initial state without notifying.
func (f *FakeProvider) SetSignedIn(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedIn = v
}

// Emit notifies listeners with v, as the identity library would.
func (f *FakeProvider) Emit(v bool) {
	f.mu.Lock()
	f.signedIn = v
	listeners := append([]func(bool){}, f.listeners...)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

func (f *FakeProvider) SignIn(context.Context) error {
	if f.Err != nil {
		return f.Err
	}
	f.Emit(true)
	return nil
}

func (f *FakeProvider) SignOut(context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	f.mu.Unlock()
	f.Emit(false)
	return nil
}

// CurrentUser returns the scripted identity and counts the call.
func (f *FakeProvider) CurrentUser(context.Context) (auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrentUserCalls++
	return auth.User{Email: f.Email, Picture: f.Picture}, nil
}

func (f *FakeProvider) AccessToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn {
		return "", errNotSignedIn
	}
	return f.Token, nil
}

// Calls returns the number of identity loads.
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CurrentUserCalls
}
