package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
	tu "github.com/desertthunder/floody/internal/testing"
)

type harness struct {
	runner   *Runner
	output   *bytes.Buffer
	backend  *tu.Backend
	provider *tu.FakeProvider
}

func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()

	backend := tu.NewBackend(t)
	backend.JSON("GET", "/admin/clientId", http.StatusOK, map[string]string{"clientId": "cid"})

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "floody.db")
	config.Floody.Endpoint = backend.URL
	config.Floody.RateLimit = 1000
	config.OAuth.ClientID = ""

	provider := &tu.FakeProvider{Email: "user@example.com", Token: "tok"}
	provider.SetSignedIn(signedIn)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Logger:   shared.NewLogger(io.Discard),
		Output:   output,
		Provider: provider,
	})
	t.Cleanup(runner.Close)

	return &harness{runner: runner, output: output, backend: backend, provider: provider}
}

func (h *harness) run(args ...string) error {
	app := &cli.Command{
		Name:      "floody",
		Commands:  h.runner.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"floody"}, args...))
}

// storeProfile persists a profile id the way a previous session would have.
func (h *harness) storeProfile(t *testing.T, id string) {
	t.Helper()
	s, err := h.runner.open()
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.prefs.Set(models.PrefProfileID, id); err != nil {
		t.Fatalf("failed to store profile: %v", err)
	}
}

func (h *harness) storedProfile(t *testing.T) (string, bool) {
	t.Helper()
	s, err := h.runner.open()
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	v, ok, err := s.prefs.Value(models.PrefProfileID)
	if err != nil {
		t.Fatalf("failed to read profile: %v", err)
	}
	return v, ok
}

func (h *harness) dcmRoutes() {
	h.backend.JSON("GET", "/user/profiles", http.StatusOK, map[string]any{"items": []map[string]any{{"id": 1, "name": "Agency"}}})
	h.backend.JSON("GET", "/user/accounts/1", http.StatusOK, map[string]any{"items": []map[string]any{{"id": 10, "name": "Advertiser"}}})
	h.backend.JSON("GET", "/user/floodlightconfigs/1", http.StatusOK, map[string]any{"items": []map[string]any{{"id": 100, "name": "Main config"}}})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status when signed out", func(t *testing.T) {
		h := newHarness(t, false)

		if err := h.run("auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Not signed in") {
			t.Errorf("expected signed-out status, got %q", h.output.String())
		}
		if h.provider.ClientID != "cid" {
			t.Errorf("expected provider to be initialised with the backend client id, got %q", h.provider.ClientID)
		}
	})

	t.Run("login shows the notice once", func(t *testing.T) {
		h := newHarness(t, false)

		if err := h.run("auth", "login"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Before you continue") {
			t.Errorf("expected the consent notice, got %q", out)
		}
		if !strings.Contains(out, "Signed in as user@example.com") {
			t.Errorf("expected identity, got %q", out)
		}

		h.output.Reset()
		if err := h.run("auth", "login"); err != nil {
			t.Fatalf("expected no error on second login, got %v", err)
		}
		if strings.Contains(h.output.String(), "Before you continue") {
			t.Errorf("expected the notice to stay hidden, got %q", h.output.String())
		}
	})

	t.Run("login failure", func(t *testing.T) {
		h := newHarness(t, false)
		h.provider.Err = errors.New("popup closed")

		err := h.run("auth", "login")
		if err == nil || !strings.Contains(err.Error(), "popup closed") {
			t.Fatalf("expected the provider error, got %v", err)
		}
		if strings.Contains(h.output.String(), "Signed in") {
			t.Errorf("expected no confirmation, got %q", h.output.String())
		}
	})

	t.Run("status when signed in", func(t *testing.T) {
		h := newHarness(t, true)
		h.storeProfile(t, "42")
		h.backend.JSON("GET", "/heart", http.StatusOK, map[string]string{"timestamp": "2026-10-17T09:00:00Z", "userToken": "tok"})

		if err := h.run("auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.output.String()
		for _, want := range []string{"Email: user@example.com", "Profile: 42", "reachable (2026-10-17T09:00:00Z)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}

		req, ok := h.backend.Last("GET", "/heart")
		if !ok {
			t.Fatal("expected a heartbeat request")
		}
		if req.Header.Get("Authorization") != "Bearer tok" || req.Header.Get("profile") != "42" {
			t.Errorf("unexpected headers: %v", req.Header)
		}
	})

	t.Run("status with unreachable backend", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.Text("GET", "/heart", http.StatusBadGateway, "down")

		err := h.run("auth", "status")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("logout clears the stored profile", func(t *testing.T) {
		h := newHarness(t, true)
		h.storeProfile(t, "42")

		if err := h.run("auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.provider.SignOutCalls != 1 {
			t.Errorf("expected one provider sign-out, got %d", h.provider.SignOutCalls)
		}
		if _, ok := h.storedProfile(t); ok {
			t.Error("expected the stored profile to be removed")
		}
		if !strings.Contains(h.output.String(), "Signed out") {
			t.Errorf("expected confirmation, got %q", h.output.String())
		}
	})
}

func TestListingCommands(t *testing.T) {
	t.Run("files requires sign-in", func(t *testing.T) {
		h := newHarness(t, false)

		err := h.run("files")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if h.backend.Count("GET", "/user/recentSheets") != 0 {
			t.Error("expected no recent sheets request")
		}
	})

	t.Run("files rejects an unknown format before any request", func(t *testing.T) {
		h := newHarness(t, true)

		err := h.run("files", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if h.backend.Count("GET", "/admin/clientId") != 0 {
			t.Error("expected no backend traffic")
		}
	})

	t.Run("files as CSV", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/user/recentSheets", http.StatusOK, map[string]any{
			"spreadsheets": []map[string]string{{"id": "s1", "name": "Spring launch", "link": "https://sheets/s1"}},
		})

		if err := h.run("files", "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.output.String()
		if !strings.HasPrefix(out, "ID,Name,Modified,Link\n") {
			t.Errorf("expected CSV header, got %q", out)
		}
		if !strings.Contains(out, "s1,Spring launch,,https://sheets/s1") {
			t.Errorf("expected sheet row, got %q", out)
		}
	})

	t.Run("files as JSON to a file", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/user/recentSheets", http.StatusOK, map[string]any{
			"spreadsheets": []map[string]string{{"id": "s1", "name": "Spring launch"}},
		})
		path := filepath.Join(t.TempDir(), "files.json")

		if err := h.run("files", "--json", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if got := tu.MustReadFile(t, path); !strings.Contains(got, `"ID": "s1"`) {
			t.Errorf("expected JSON export, got %q", got)
		}
	})

	t.Run("profiles as markdown", func(t *testing.T) {
		h := newHarness(t, true)
		h.dcmRoutes()

		if err := h.run("profiles", "--format", "md"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "# Profiles") || !strings.Contains(out, "| 1 | Agency |") {
			t.Errorf("expected markdown table, got %q", out)
		}
	})

	t.Run("profiles without items", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/user/profiles", http.StatusOK, map[string]any{})

		err := h.run("profiles")
		if !errors.Is(err, shared.ErrNoProfile) {
			t.Fatalf("expected ErrNoProfile, got %v", err)
		}
	})

	t.Run("accounts needs a profile", func(t *testing.T) {
		h := newHarness(t, true)

		err := h.run("accounts")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("accounts does not persist the profile", func(t *testing.T) {
		h := newHarness(t, true)
		h.dcmRoutes()

		if err := h.run("accounts", "--profile", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Advertiser") {
			t.Errorf("expected account listing, got %q", h.output.String())
		}
		if _, ok := h.storedProfile(t); ok {
			t.Error("expected no stored profile")
		}
	})

	t.Run("accounts falls back to the stored profile", func(t *testing.T) {
		h := newHarness(t, true)
		h.dcmRoutes()
		h.storeProfile(t, "1")

		if err := h.run("accounts"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.backend.Count("GET", "/user/accounts/1") != 1 {
			t.Error("expected the stored profile's accounts to be requested")
		}
	})

	t.Run("configs for an account", func(t *testing.T) {
		h := newHarness(t, true)
		h.dcmRoutes()

		if err := h.run("configs", "--profile", "1", "--account", "10"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Main config") {
			t.Errorf("expected configuration listing, got %q", h.output.String())
		}
		req, ok := h.backend.Last("GET", "/user/floodlightconfigs/1")
		if !ok || req.Query != "accountId=10" {
			t.Errorf("expected accountId=10, got %+v", req)
		}
	})
}

func TestCreateCommand(t *testing.T) {
	t.Run("creates and checks access", func(t *testing.T) {
		h := newHarness(t, true)
		h.dcmRoutes()
		h.backend.JSON("POST", "/admin/init/10/100", http.StatusOK, map[string]string{
			"id": "sheet-9", "name": "Floody Main config", "link": "https://sheets/sheet-9",
		})
		h.backend.JSON("GET", "/user/checkUserAuth/sheet-9", http.StatusOK, map[string]any{
			"status":                 "FULL_AUTH",
			"userDcmProfiles":        []map[string]any{{"id": 1}},
			"spreadsheetInformation": map[string]string{"id": "sheet-9", "name": "Floody Main config"},
		})

		if err := h.run("create", "--profile", "1", "--config", "100"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.output.String()
		for _, want := range []string{"Created Floody Main config", "ID: sheet-9", "Link: https://sheets/sheet-9"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
		if v, _ := h.storedProfile(t); v != "1" {
			t.Errorf("expected profile 1 to be stored, got %q", v)
		}
		if h.backend.Count("GET", "/user/checkUserAuth/sheet-9") != 1 {
			t.Error("expected an access check")
		}
	})

	t.Run("incomplete selection", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/user/accounts/1", http.StatusOK, map[string]any{})

		err := h.run("create", "--profile", "1", "--config", "100")
		if !errors.Is(err, shared.ErrIncompleteSelection) {
			t.Fatalf("expected ErrIncompleteSelection, got %v", err)
		}
		if h.backend.Count("POST", "/admin/init/10/100") != 0 {
			t.Error("expected no init request")
		}
	})
}

func TestSheetCommands(t *testing.T) {
	t.Run("share needs a recipient", func(t *testing.T) {
		h := newHarness(t, true)

		err := h.run("sheet", "share", "--id", "s1")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("share splits recipients", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.Text("POST", "/admin/share/s1", http.StatusOK, "")

		if err := h.run("sheet", "share", "--id", "s1", "--user", "a@example.com, b@example.com"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req, ok := h.backend.Last("POST", "/admin/share/s1")
		if !ok {
			t.Fatal("expected a share request")
		}
		if req.Body != `{"users":["a@example.com","b@example.com"]}` {
			t.Errorf("unexpected body %s", req.Body)
		}
	})

	t.Run("export requires a stored profile", func(t *testing.T) {
		h := newHarness(t, true)

		err := h.run("sheet", "export", "--id", "s1")
		if !errors.Is(err, shared.ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
		if h.backend.Count("GET", "/floody/exportToDcm/s1") != 0 {
			t.Error("expected no export request")
		}
	})

	t.Run("export prints the report", func(t *testing.T) {
		h := newHarness(t, true)
		h.storeProfile(t, "1")
		h.backend.Text("GET", "/floody/exportToDcm/s1", http.StatusOK, "Updated 3 activities")

		if err := h.run("sheet", "export", "--id", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Exporting...") || !strings.Contains(out, "✓ Updated 3 activities") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("import with an empty report", func(t *testing.T) {
		h := newHarness(t, true)
		h.storeProfile(t, "1")
		h.backend.Text("GET", "/floody/exportToSheet/s1", http.StatusOK, "")

		if err := h.run("sheet", "import", "--id", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "✓ Import complete") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("add rows", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.Text("GET", "/admin/addRows/s1", http.StatusOK, "")

		if err := h.run("sheet", "add-rows", "--id", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Successfully added 100 rows") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("rename", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/admin/updateTitle/s1/Q4 tags", http.StatusOK, map[string]string{"id": "s1", "name": "Q4 tags"})

		if err := h.run("sheet", "rename", "--id", "s1", "--title", "Q4 tags"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Renamed to Q4 tags") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("auth reports partial access", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/user/checkUserAuth/s1", http.StatusOK, map[string]any{
			"status":                 "SHEET_ONLY_AUTH",
			"userDcmProfiles":        []map[string]any{},
			"spreadsheetInformation": map[string]string{"id": "s1", "name": "Spring launch"},
		})

		if err := h.run("sheet", "auth", "--id", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Access: SHEET_ONLY_AUTH") || !strings.Contains(out, "does not have a User Profile") {
			t.Errorf("unexpected output %q", out)
		}
	})
}

func TestGtmCommands(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("POST", "/gtmrequest/create", http.StatusOK, map[string]any{
			"requestId":  "r1",
			"requestUri": "https://floody/gtm/r1",
			"status":     map[string]any{"success": true},
		})

		err := h.run("gtm", "request", "--sheet", "s1", "--container", "GTM-1",
			"--approver", "a@example.com", "--approver", "b@example.com", "--message", "please")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(h.output.String(), "GTM request r1 submitted") {
			t.Errorf("unexpected output %q", h.output.String())
		}
		req, _ := h.backend.Last("POST", "/gtmrequest/create")
		want := `{"spreadsheetId":"s1","gtmContainerId":"GTM-1","requesterMessage":"please","approverEmails":["a@example.com","b@example.com"]}`
		if req.Body != want {
			t.Errorf("expected body %s, got %s", want, req.Body)
		}
	})

	t.Run("request rejected by the backend", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("POST", "/gtmrequest/create", http.StatusOK, map[string]any{
			"status": map[string]any{"success": false, "errorMessage": "container not found"},
		})

		err := h.run("gtm", "request", "--sheet", "s1", "--container", "GTM-1", "--approver", "a@example.com")
		if !errors.Is(err, shared.ErrGtmRequestFailed) {
			t.Fatalf("expected ErrGtmRequestFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "container not found") {
			t.Errorf("expected backend message, got %v", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("GET", "/gtmrequest/r1", http.StatusOK, map[string]any{
			"id":                   "r1",
			"gtmContainerId":       "GTM-1",
			"requesterEmail":       "req@example.com",
			"approverEmails":       []string{"a@example.com"},
			"floodlightActivities": []map[string]string{{"name": "Purchase"}},
		})

		if err := h.run("gtm", "show", "--id", "r1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		for _, want := range []string{"GTM request: r1", "Status: Pending", "1. Purchase"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
	})

	t.Run("reject needs a comment", func(t *testing.T) {
		h := newHarness(t, true)

		err := h.run("gtm", "reject", "--id", "r1")
		if !errors.Is(err, shared.ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
		if h.backend.Count("POST", "/gtmrequest/r1:reject") != 0 {
			t.Error("expected no reject request")
		}
	})

	t.Run("approve", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("POST", "/gtmrequest/r1:approve", http.StatusOK, map[string]any{
			"action":                "approve",
			"success":               true,
			"gtmTagOperationResult": []map[string]any{{"floodlightActivityName": "Purchase", "success": true}},
		})

		if err := h.run("gtm", "approve", "--id", "r1", "--comment", "ship it"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Approve succeeded") || !strings.Contains(out, "[ok] Purchase") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("approve with failed tags", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.JSON("POST", "/gtmrequest/r1:approve", http.StatusOK, map[string]any{
			"action":  "approve",
			"success": false,
			"gtmTagOperationResult": []map[string]any{
				{"floodlightActivityName": "Purchase", "success": true},
				{"floodlightActivityName": "Lead", "success": false, "message": "duplicate"},
			},
		})

		err := h.run("gtm", "approve", "--id", "r1")
		if !errors.Is(err, shared.ErrGtmRequestFailed) {
			t.Fatalf("expected ErrGtmRequestFailed, got %v", err)
		}
		if !strings.Contains(h.output.String(), "[FAILED] Lead: duplicate") {
			t.Errorf("expected failed tag in output, got %q", h.output.String())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness(t, false)

	if err := h.run("setup", "--config", "floody.toml"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, "floody.toml")
	tu.AssertFileExists(t, "floody.db")
	if !strings.Contains(h.output.String(), "Setup complete") {
		t.Errorf("unexpected output %q", h.output.String())
	}
	if _, err := os.Stat(h.runner.config.Database.Path); err == nil {
		t.Error("expected setup to use the created config rather than the runner's database")
	}
}

func TestSetupRollback(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness(t, false)

	if err := h.run("setup", "--config", "floody.toml"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	for _, want := range []string{"migration 0001 (create_oauth_tokens)", "migration 0000 (create_preferences)"} {
		if err := h.run("setup", "--config", "floody.toml", "--rollback"); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if !strings.Contains(h.output.String(), "Rolled back "+want) {
			t.Errorf("expected %q in output %q", want, h.output.String())
		}
	}

	if err := h.run("setup", "--config", "floody.toml", "--rollback"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound once nothing is applied, got %v", err)
	}

	if err := h.run("setup", "--config", "floody.toml"); err != nil {
		t.Fatalf("setup after rollback failed: %v", err)
	}
}
