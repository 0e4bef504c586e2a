package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/floody/internal/auth"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/store"
	tu "github.com/desertthunder/floody/internal/testing"
)

type staticClientID struct {
	id  string
	err error
}

func (s staticClientID) ClientID(context.Context) (string, error) { return s.id, s.err }

type eventLog struct {
	mu     sync.Mutex
	events []store.Event
}

func (l *eventLog) observe(ev store.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) routeChanges(to store.Route) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Kind == store.EventRouteChanged && ev.Route == to {
			n++
		}
	}
	return n
}

func (l *eventLog) count(kind store.EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	store    *store.Store
	provider *tu.FakeProvider
	prefs    *tu.MemoryPreferences
	gateway  *auth.Gateway
	events   *eventLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    store.New(nil),
		provider: &tu.FakeProvider{Email: "user@example.com", Picture: "https://example.com/u.png", Token: "tok"},
		prefs:    tu.NewMemoryPreferences(),
		events:   &eventLog{},
	}
	f.store.Subscribe(f.events.observe)
	f.gateway = auth.NewGateway(auth.GatewayOptions{
		Store:    f.store,
		Provider: f.provider,
		Backend:  staticClientID{id: "client.apps.googleusercontent.com"},
		Prefs:    f.prefs,
	})
	return f
}

func TestGatewayInit(t *testing.T) {
	t.Run("Signed out routes home", func(t *testing.T) {
		f := newFixture(t)
		if err := f.gateway.Init(context.Background()); err != nil {
			t.Fatalf("Init failed: %v", err)
		}

		if f.store.Route() != store.Homepage {
			t.Errorf("expected homepage, got %s", f.store.Route())
		}
		if f.store.ClientID() != "client.apps.googleusercontent.com" {
			t.Errorf("unexpected client id %q", f.store.ClientID())
		}
		if f.provider.ClientID != "client.apps.googleusercontent.com" || len(f.provider.Scopes) != 4 {
			t.Errorf("provider not initialised with client id and scopes: %q %v", f.provider.ClientID, f.provider.Scopes)
		}
	})

	t.Run("Already signed in routes to file select", func(t *testing.T) {
		f := newFixture(t)
		f.provider.SetSignedIn(true)

		if err := f.gateway.Init(context.Background()); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		snap := f.store.Snapshot()
		if snap.Route != store.FileSelect || !snap.IsSignedIn || snap.Email != "user@example.com" {
			t.Errorf("unexpected state %+v", snap)
		}
	})

	t.Run("Configured client id skips backend", func(t *testing.T) {
		st := store.New(nil)
		provider := &tu.FakeProvider{}
		gw := auth.NewGateway(auth.GatewayOptions{
			Store:    st,
			Provider: provider,
			Backend:  staticClientID{err: errors.New("should not be called")},
			Prefs:    tu.NewMemoryPreferences(),
			ClientID: "override",
		})

		if err := gw.Init(context.Background()); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if provider.ClientID != "override" {
			t.Errorf("expected override client id, got %q", provider.ClientID)
		}
	})

	t.Run("Backend failure is reported", func(t *testing.T) {
		st := store.New(nil)
		events := &eventLog{}
		st.Subscribe(events.observe)
		gw := auth.NewGateway(auth.GatewayOptions{
			Store:    st,
			Provider: &tu.FakeProvider{},
			Backend:  staticClientID{err: errors.New("down")},
			Prefs:    tu.NewMemoryPreferences(),
		})

		if err := gw.Init(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if events.count(store.EventError) != 1 {
			t.Error("expected error event")
		}
		if st.Route() != store.Loading {
			t.Errorf("route should stay loading, got %s", st.Route())
		}
	})
}

func TestGatewaySignIn(t *testing.T) {
	t.Run("Exactly once per transition", func(t *testing.T) {
		f := newFixture(t)
		if err := f.gateway.Init(context.Background()); err != nil {
			t.Fatalf("Init failed: %v", err)
		}

		f.provider.Emit(true)
		f.provider.Emit(true)

		if got := f.events.routeChanges(store.FileSelect); got != 1 {
			t.Errorf("expected one FILESELECT route change, got %d", got)
		}
		if got := f.provider.Calls(); got != 1 {
			t.Errorf("expected one identity load, got %d", got)
		}
		if got := f.events.count(store.EventSignedIn); got != 1 {
			t.Errorf("expected one signed-in event, got %d", got)
		}
		snap := f.store.Snapshot()
		if snap.Email != "user@example.com" || snap.ProfilePicture != "https://example.com/u.png" {
			t.Errorf("identity not loaded: %+v", snap)
		}
	})

	t.Run("Consent notice on first sign-in", func(t *testing.T) {
		f := newFixture(t)
		_ = f.gateway.Init(context.Background())
		_ = f.gateway.SignIn(context.Background())

		if f.events.count(store.EventShowConsent) != 1 {
			t.Error("expected consent event")
		}
	})

	t.Run("Consent notice offered once per session", func(t *testing.T) {
		f := newFixture(t)
		_ = f.gateway.Init(context.Background())
		_ = f.gateway.SignIn(context.Background())
		f.gateway.UpdateSigninStatus(false)
		f.gateway.UpdateSigninStatus(true)

		if n := f.events.count(store.EventShowConsent); n != 1 {
			t.Errorf("expected one consent event, got %d", n)
		}
	})

	t.Run("Consent notice offered again after sign-out", func(t *testing.T) {
		f := newFixture(t)
		_ = f.gateway.Init(context.Background())
		_ = f.gateway.SignIn(context.Background())
		if err := f.gateway.SignOut(context.Background()); err != nil {
			t.Fatalf("SignOut failed: %v", err)
		}
		_ = f.gateway.SignIn(context.Background())

		if n := f.events.count(store.EventShowConsent); n != 2 {
			t.Errorf("expected two consent events, got %d", n)
		}
	})

	t.Run("Provider failure is reported", func(t *testing.T) {
		f := newFixture(t)
		_ = f.gateway.Init(context.Background())
		f.provider.Err = errors.New("denied")

		if err := f.gateway.SignIn(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if f.store.IsSignedIn() {
			t.Error("should remain signed out")
		}
		if f.events.count(store.EventError) != 1 {
			t.Error("expected error event")
		}
	})
}

func TestGatewaySignOut(t *testing.T) {
	f := newFixture(t)
	f.provider.SetSignedIn(true)
	_ = f.gateway.Init(context.Background())
	_ = f.prefs.Set(models.PrefProfileID, "123")
	_ = f.prefs.Set(models.PrefConsentExpiresAt, "1")
	f.store.SelectProfile("123")

	if err := f.gateway.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	snap := f.store.Snapshot()
	if snap.Route != store.Homepage {
		t.Errorf("expected homepage, got %s", snap.Route)
	}
	if snap.IsSignedIn || snap.Email != "" || snap.SelectedProfile != "" {
		t.Errorf("session not reset: %+v", snap)
	}
	if snap.ClientID == "" {
		t.Error("client id should survive sign-out")
	}
	if _, ok, _ := f.prefs.Value(models.PrefProfileID); ok {
		t.Errorf("%s should be removed", models.PrefProfileID)
	}
	if _, ok, _ := f.prefs.Value(models.PrefConsentExpiresAt); !ok {
		t.Error("consent expiry is long-lived and should be kept")
	}
	if f.provider.SignOutCalls != 1 {
		t.Errorf("expected provider sign-out, got %d calls", f.provider.SignOutCalls)
	}
}

func TestConsent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Due without expiry", func(t *testing.T) {
		c := auth.NewConsent(tu.NewMemoryPreferences())
		if !c.Due(now) {
			t.Error("expected notice to be due")
		}
	})

	t.Run("Acknowledge hides for 24h", func(t *testing.T) {
		prefs := tu.NewMemoryPreferences()
		c := auth.NewConsent(prefs)
		if err := c.Acknowledge(now); err != nil {
			t.Fatalf("Acknowledge failed: %v", err)
		}

		if c.Due(now.Add(23 * time.Hour)) {
			t.Error("notice should be hidden within 24h")
		}
		if !c.Due(now.Add(25 * time.Hour)) {
			t.Error("notice should be due after 24h")
		}
		if keys := prefs.Keys(); len(keys) != 1 || keys[0] != models.PrefConsentExpiresAt {
			t.Errorf("expected only the expiry to be stored, got %v", keys)
		}
	})

	t.Run("ShowIfDue", func(t *testing.T) {
		c := auth.NewConsent(tu.NewMemoryPreferences())
		if show, err := c.ShowIfDue(now); err != nil || !show {
			t.Errorf("first ShowIfDue = %v, %v", show, err)
		}
		if show, _ := c.ShowIfDue(now.Add(time.Hour)); show {
			t.Error("second ShowIfDue should not show")
		}
	})

	t.Run("Garbage expiry is due", func(t *testing.T) {
		prefs := tu.NewMemoryPreferences()
		_ = prefs.Set(models.PrefConsentExpiresAt, "soon")
		if !auth.NewConsent(prefs).Due(now) {
			t.Error("unparseable expiry should be due")
		}
	})
}

func TestCredentials(t *testing.T) {
	prefs := tu.NewMemoryPreferences()
	provider := &tu.FakeProvider{Token: "tok"}
	provider.SetSignedIn(true)
	creds := auth.Credentials{Tokens: provider, Prefs: prefs}

	if creds.ProfileID() != "" {
		t.Error("expected empty profile id")
	}
	_ = prefs.Set(models.PrefProfileID, "42")
	if creds.ProfileID() != "42" {
		t.Errorf("expected 42, got %q", creds.ProfileID())
	}
	if tok, err := creds.AccessToken(context.Background()); err != nil || tok != "tok" {
		t.Errorf("AccessToken = %q, %v", tok, err)
	}
}

// TestConsentAcrossSessions runs separate processes over the same stored preferences.
// A process started after the acknowledgement expired must show the notice again.
func TestConsentAcrossSessions(t *testing.T) {
	prefs := tu.NewMemoryPreferences()
	day0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	session := func(now time.Time) (offered, shown bool) {
		st := store.New(nil)
		events := &eventLog{}
		st.Subscribe(events.observe)
		provider := &tu.FakeProvider{Email: "user@example.com", Token: "tok"}
		provider.SetSignedIn(true)
		gw := auth.NewGateway(auth.GatewayOptions{
			Store:    st,
			Provider: provider,
			Backend:  staticClientID{id: "cid"},
			Prefs:    prefs,
		})
		if err := gw.Init(context.Background()); err != nil {
			t.Fatalf("Init failed: %v", err)
		}

		offered = events.count(store.EventShowConsent) == 1
		if offered {
			var err error
			if shown, err = auth.NewConsent(prefs).ShowIfDue(now); err != nil {
				t.Fatalf("ShowIfDue failed: %v", err)
			}
		}
		return offered, shown
	}

	if offered, shown := session(day0); !offered || !shown {
		t.Fatalf("first session: offered=%v shown=%v", offered, shown)
	}
	if offered, shown := session(day0.Add(2 * time.Hour)); !offered || shown {
		t.Errorf("second session within 24h: offered=%v shown=%v", offered, shown)
	}
	if offered, shown := session(day0.Add(72 * time.Hour)); !offered || !shown {
		t.Errorf("session after expiry: offered=%v shown=%v", offered, shown)
	}
}
