// Package auth connects the identity provider to the session store.
//
// The [Gateway] fetches the OAuth client id from the backend, initialises an [IdentityProvider] with Floody's scopes and translates the provider's sign-in signal into store updates: a false→true transition loads the user's identity once and routes to the file picker, a sign-out routes home and clears the persisted session keys.
//
// [GoogleProvider] is the production provider. It runs the authorization code flow through a temporary loopback server, persists the token in sqlite and reads the user's identity from the ID token.
package auth
