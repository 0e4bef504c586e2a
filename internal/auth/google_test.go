package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]models.OAuthToken
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: map[string]models.OAuthToken{}}
}

func (m *memoryTokens) Get(provider string) (*models.OAuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[provider]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &tok, nil
}

func (m *memoryTokens) Save(tok *models.OAuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tok.Provider] = *tok
	return nil
}

func (m *memoryTokens) Delete(provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, provider)
	return nil
}

func idToken(t *testing.T, email, picture string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"picture": picture,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign id token: %v", err)
	}
	return signed
}

// googleStub serves a token endpoint and a userinfo endpoint.
func googleStub(t *testing.T, id string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			json.NewEncoder(w).Encode(map[string]any{"access_token": "refreshed", "token_type": "Bearer", "expires_in": 3600})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "fresh", "refresh_token": "rt", "token_type": "Bearer", "expires_in": 3600, "id_token": id,
			})
		}
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"email": "info@example.com", "picture": "https://example.com/i.png"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, stub *httptest.Server, tokens TokenStore, addr string) *GoogleProvider {
	t.Helper()
	return NewGoogleProvider(GoogleOptions{
		CallbackAddr: addr,
		Tokens:       tokens,
		Endpoint:     oauth2.Endpoint{AuthURL: stub.URL + "/auth", TokenURL: stub.URL + "/token"},
		UserInfoURL:  stub.URL + "/userinfo",
		OpenBrowser:  func(string) error { return errors.New("no browser") },
		Timeout:      5 * time.Second,
	})
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

func TestGoogleProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Not signed in without token", func(t *testing.T) {
		stub := googleStub(t, "")
		p := newTestProvider(t, stub, newMemoryTokens(), "127.0.0.1:0")
		if err := p.Init(ctx, "client", Scopes); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if p.IsSignedIn() {
			t.Error("expected signed out")
		}
		if _, err := p.AccessToken(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Restores persisted token", func(t *testing.T) {
		stub := googleStub(t, "")
		tokens := newMemoryTokens()
		_ = tokens.Save(&models.OAuthToken{Provider: "google", AccessToken: "stored", Expiry: time.Now().Add(time.Hour)})

		p := newTestProvider(t, stub, tokens, "127.0.0.1:0")
		_ = p.Init(ctx, "client", Scopes)

		if !p.IsSignedIn() {
			t.Fatal("expected signed in from stored token")
		}
		if tok, _ := p.AccessToken(ctx); tok != "stored" {
			t.Errorf("expected stored token, got %q", tok)
		}
	})

	t.Run("Refreshes expired token", func(t *testing.T) {
		stub := googleStub(t, "")
		tokens := newMemoryTokens()
		_ = tokens.Save(&models.OAuthToken{
			Provider: "google", AccessToken: "old", RefreshToken: "rt", Expiry: time.Now().Add(-time.Hour),
		})

		p := newTestProvider(t, stub, tokens, "127.0.0.1:0")
		_ = p.Init(ctx, "client", Scopes)

		tok, err := p.AccessToken(ctx)
		if err != nil {
			t.Fatalf("AccessToken failed: %v", err)
		}
		if tok != "refreshed" {
			t.Errorf("expected refreshed token, got %q", tok)
		}
		stored, _ := tokens.Get("google")
		if stored.AccessToken != "refreshed" {
			t.Error("refreshed token should be persisted")
		}
	})

	t.Run("Expired without refresh token", func(t *testing.T) {
		stub := googleStub(t, "")
		tokens := newMemoryTokens()
		_ = tokens.Save(&models.OAuthToken{Provider: "google", AccessToken: "old", Expiry: time.Now().Add(-time.Hour)})

		p := newTestProvider(t, stub, tokens, "127.0.0.1:0")
		_ = p.Init(ctx, "client", Scopes)

		if p.IsSignedIn() {
			t.Error("expired token without refresh should not count as signed in")
		}
		if _, err := p.AccessToken(ctx); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("SignIn flow", func(t *testing.T) {
		stub := googleStub(t, idToken(t, "jwt@example.com", "https://example.com/j.png"))
		tokens := newMemoryTokens()
		addr := freeAddr(t)

		p := newTestProvider(t, stub, tokens, addr)
		p.opts.OpenBrowser = func(authURL string) error {
			u, _ := url.Parse(authURL)
			go http.Get(fmt.Sprintf("http://%s/callback?state=%s&code=abc", addr, url.QueryEscape(u.Query().Get("state"))))
			return nil
		}
		_ = p.Init(ctx, "client", Scopes)

		var signals []bool
		p.Listen(func(v bool) { signals = append(signals, v) })

		if err := p.SignIn(ctx); err != nil {
			t.Fatalf("SignIn failed: %v", err)
		}
		if len(signals) != 1 || !signals[0] {
			t.Errorf("expected one true signal, got %v", signals)
		}

		stored, err := tokens.Get("google")
		if err != nil || stored.AccessToken != "fresh" || stored.IDToken == "" {
			t.Fatalf("token not persisted: %+v %v", stored, err)
		}

		user, err := p.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser failed: %v", err)
		}
		if user.Email != "jwt@example.com" || user.Picture != "https://example.com/j.png" {
			t.Errorf("unexpected user %+v", user)
		}

		if err := p.SignOut(ctx); err != nil {
			t.Fatalf("SignOut failed: %v", err)
		}
		if p.IsSignedIn() {
			t.Error("expected signed out")
		}
		if _, err := tokens.Get("google"); !errors.Is(err, shared.ErrNotFound) {
			t.Error("token should be deleted on sign-out")
		}
		if len(signals) != 2 || signals[1] {
			t.Errorf("expected a false signal after sign-out, got %v", signals)
		}
	})

	t.Run("CurrentUser falls back to userinfo", func(t *testing.T) {
		stub := googleStub(t, "")
		tokens := newMemoryTokens()
		_ = tokens.Save(&models.OAuthToken{Provider: "google", AccessToken: "stored", Expiry: time.Now().Add(time.Hour)})

		p := newTestProvider(t, stub, tokens, "127.0.0.1:0")
		_ = p.Init(ctx, "client", Scopes)

		user, err := p.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser failed: %v", err)
		}
		if user.Email != "info@example.com" {
			t.Errorf("expected userinfo email, got %q", user.Email)
		}
	})

	t.Run("SignIn before Init", func(t *testing.T) {
		stub := googleStub(t, "")
		p := newTestProvider(t, stub, newMemoryTokens(), "127.0.0.1:0")
		if err := p.SignIn(ctx); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}
