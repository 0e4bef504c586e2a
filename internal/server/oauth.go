package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles OAuth2 callback requests for the authorization code flow with PKCE.
// [RunCallback] registers it at [CallbackPath].
type OAuthHandler struct {
	config      *oauth2.Config
	state       string
	verifier    string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler with the given OAuth2 config, state token and PKCE verifier.
// The state token should be cryptographically random for CSRF protection.
func NewOAuthHandler(config *oauth2.Config, state, verifier string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		verifier:   verifier,
		resultChan: make(chan OAuthResult, 1),
	}
}

// AuthCodeURL returns the consent page URL the user must visit.
//
// Offline access is requested so the refresh token survives between runs.
func (h *OAuthHandler) AuthCodeURL() string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if h.verifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(h.verifier))
	}
	return h.config.AuthCodeURL(h.state, opts...)
}

// ServeHTTP handles the OAuth callback request.
//
// Validates state parameter, exchanges authorization code for tokens, and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		err := fmt.Errorf("authorization failed: %s - %s", q.Get("error"), q.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	var opts []oauth2.AuthCodeOption
	if h.verifier != "" {
		opts = append(opts, oauth2.VerifierOption(h.verifier))
	}

	token, err := h.config.Exchange(context.WithoutCancel(r.Context()), code, opts...)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Floody: signed in</title>
    <style>
        body { font-family: Roboto, -apple-system, "Segoe UI", sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f1f3f4; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 1px 3px rgba(60,64,67,0.3); }
        h1 { color: #1a73e8; margin: 0 0 1rem 0; }
        p { color: #5f6368; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Signed in to Floody</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
