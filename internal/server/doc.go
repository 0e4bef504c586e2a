// Package server provides the temporary local HTTP server used during sign-in.
//
// # Router Infrastructure
//
// [BasicRouter] registers handlers on an [http.ServeMux] using method patterns ("GET /callback"), so other methods get 405.
//
// [Middleware] added with [BasicRouter.Use] runs in the order it was added.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback with PKCE.
//
// The handler validates the state parameter, exchanges the authorization code for tokens, and sends the result through a channel.
// It only processes one callback.
//
// [RunCallback] owns the server lifecycle: it listens on the configured loopback address, hands the consent URL to the caller (usually to open a browser), waits up to two minutes for the callback and shuts the server down.
package server
