package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/floody/internal/shared"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		if r.Form.Get("code_verifier") == "" {
			http.Error(w, `{"error":"missing verifier"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600,"id_token":"h.p.s"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL, redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  redirect,
		Scopes:       []string{"email"},
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenURL},
	}
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %q", rec.Body.String())
		}
	})

	t.Run("Middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle("GET", "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

		if strings.Join(order, ",") != "first,second" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	tokenSrv := newTokenServer(t)

	t.Run("Invalid state", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokenSrv.URL, ""), "expected", oauth2.GenerateVerifier())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=wrong&code=good-code", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil {
			t.Error("expected state error")
		}
	})

	t.Run("Provider error", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokenSrv.URL, ""), "s", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=s&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("Success and replay", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokenSrv.URL, ""), "s", oauth2.GenerateVerifier())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=s&code=good-code", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "at" {
			t.Fatalf("unexpected result %+v", result)
		}
		if result.Token.Extra("id_token") != "h.p.s" {
			t.Error("expected id_token in token extras")
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=s&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("replayed callback should be rejected, got %d", rec.Code)
		}
	})

	t.Run("AuthCodeURL", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokenSrv.URL, "http://127.0.0.1:3000/callback"), "s", oauth2.GenerateVerifier())
		u, err := url.Parse(h.AuthCodeURL())
		if err != nil {
			t.Fatalf("invalid auth URL: %v", err)
		}
		q := u.Query()
		if q.Get("state") != "s" || q.Get("access_type") != "offline" || q.Get("code_challenge_method") != "S256" {
			t.Errorf("unexpected auth URL query %v", q)
		}
	})
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestRunCallback(t *testing.T) {
	tokenSrv := newTokenServer(t)

	t.Run("Receives token", func(t *testing.T) {
		addr := freeAddr(t)
		cfg := testConfig(tokenSrv.URL, fmt.Sprintf("http://%s/callback", addr))

		token, err := RunCallback(context.Background(), CallbackOptions{
			Addr:    addr,
			Config:  cfg,
			Timeout: 10 * time.Second,
			OnAuthURL: func(authURL string) {
				u, _ := url.Parse(authURL)
				state := u.Query().Get("state")
				go http.Get(fmt.Sprintf("http://%s/callback?state=%s&code=good-code", addr, url.QueryEscape(state)))
			},
		})
		if err != nil {
			t.Fatalf("RunCallback failed: %v", err)
		}
		if token.AccessToken != "at" || token.RefreshToken != "rt" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("Callback accepts only GET", func(t *testing.T) {
		addr := freeAddr(t)
		posted := make(chan int, 1)
		token, err := RunCallback(context.Background(), CallbackOptions{
			Addr:    addr,
			Config:  testConfig(tokenSrv.URL, "http://"+addr+CallbackPath),
			Timeout: 10 * time.Second,
			OnAuthURL: func(authURL string) {
				u, _ := url.Parse(authURL)
				target := fmt.Sprintf("http://%s%s?state=%s&code=good-code", addr, CallbackPath, url.QueryEscape(u.Query().Get("state")))
				go func() {
					resp, err := http.Post(target, "text/plain", nil)
					if err != nil {
						posted <- 0
					} else {
						resp.Body.Close()
						posted <- resp.StatusCode
					}
					http.Get(target)
				}()
			},
		})
		if err != nil {
			t.Fatalf("RunCallback failed: %v", err)
		}
		if code := <-posted; code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for POST, got %d", code)
		}
		if token.AccessToken != "at" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("Unknown path", func(t *testing.T) {
		addr := freeAddr(t)
		notFound := make(chan int, 1)
		token, err := RunCallback(context.Background(), CallbackOptions{
			Addr:    addr,
			Config:  testConfig(tokenSrv.URL, "http://"+addr+CallbackPath),
			Timeout: 10 * time.Second,
			OnAuthURL: func(authURL string) {
				u, _ := url.Parse(authURL)
				state := url.QueryEscape(u.Query().Get("state"))
				go func() {
					resp, err := http.Get(fmt.Sprintf("http://%s/other?state=%s&code=good-code", addr, state))
					if err != nil {
						notFound <- 0
					} else {
						resp.Body.Close()
						notFound <- resp.StatusCode
					}
					http.Get(fmt.Sprintf("http://%s%s?state=%s&code=good-code", addr, CallbackPath, state))
				}()
			},
		})
		if err != nil {
			t.Fatalf("RunCallback failed: %v", err)
		}
		if code := <-notFound; code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown path, got %d", code)
		}
		if token.RefreshToken != "rt" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("Times out", func(t *testing.T) {
		_, err := RunCallback(context.Background(), CallbackOptions{
			Addr:    freeAddr(t),
			Config:  testConfig(tokenSrv.URL, ""),
			Timeout: 50 * time.Millisecond,
		})
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := RunCallback(ctx, CallbackOptions{Addr: freeAddr(t), Config: testConfig(tokenSrv.URL, "")})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Exchange failure", func(t *testing.T) {
		addr := freeAddr(t)
		_, err := RunCallback(context.Background(), CallbackOptions{
			Addr:    addr,
			Config:  testConfig(tokenSrv.URL, fmt.Sprintf("http://%s/callback", addr)),
			Timeout: 10 * time.Second,
			OnAuthURL: func(authURL string) {
				u, _ := url.Parse(authURL)
				go http.Get(fmt.Sprintf("http://%s/callback?state=%s&code=bad", addr, url.QueryEscape(u.Query().Get("state"))))
			},
		})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}
