package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/floody/internal/formatter"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
	"github.com/desertthunder/floody/internal/store"
)

// Backend is the subset of the Floody API the loader reads from.
type Backend interface {
	Profiles(ctx context.Context) (*models.DcmObjectList, error)
	Accounts(ctx context.Context, profileID string) (*models.DcmObjectList, error)
	FloodlightConfigs(ctx context.Context, profileID, accountID string) (*models.DcmObjectList, error)
	RecentSheets(ctx context.Context) (*models.RecentSheetsResponse, error)
}

// ProfileSaver persists the selected profile id.
type ProfileSaver interface {
	Set(key, value string) error
}

// Options configures a [Loader].
type Options struct {
	Store   *store.Store
	Backend Backend
	Prefs   ProfileSaver
	Logger  *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// chain is a running selection load.
type chain struct {
	cancel context.CancelFunc
}

// Loader fills the store with profiles, accounts, floodlight configurations and recent files.
type Loader struct {
	store   *store.Store
	backend Backend
	prefs   ProfileSaver
	logger  *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *chain
}

// New creates a [Loader].
func New(opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loader{
		store:   opts.Store,
		backend: opts.Backend,
		prefs:   opts.Prefs,
		logger:  shared.WithLogger(opts.Logger, "component", "loader"),
		now:     opts.Now,
	}
}

// fail logs err, routes it to the store's error path and returns it.
func (l *Loader) fail(step string, err error) error {
	err = fmt.Errorf("failed to load %s: %w", step, err)
	if errors.Is(err, context.Canceled) {
		l.logger.Debug("load cancelled", "step", step)
		return err
	}
	l.logger.Error("load failed", "step", step, "error", err)
	l.store.ReportError(err)
	return err
}

// superseded reports whether a chain started under gen has been overtaken by a newer selection or cancelled.
func (l *Loader) superseded(ctx context.Context, gen uint64) bool {
	return errors.Is(ctx.Err(), context.Canceled) || l.store.Generation() != gen
}

func items(list *models.DcmObjectList) []models.DcmObject {
	if list == nil {
		return nil
	}
	return list.Items
}

// LoadProfiles fetches the user's CM profiles.
//
// A response without items is reported as [shared.ErrNoProfile] and leaves the route unchanged.
func (l *Loader) LoadProfiles(ctx context.Context) ([]models.DcmObject, error) {
	list, err := l.backend.Profiles(ctx)
	if err != nil {
		return nil, l.fail("profiles", err)
	}
	if list == nil || len(list.Items) == 0 {
		l.logger.Warn("no profiles")
		l.store.ReportError(shared.ErrNoProfile)
		return nil, shared.ErrNoProfile
	}

	l.store.SetProfiles(list.Items)
	return list.Items, nil
}

// LoadAccounts fetches the accounts of the selected profile and, once an account is selected, its floodlight configurations.
// It does nothing when no profile is selected.
func (l *Loader) LoadAccounts(ctx context.Context) error {
	snap := l.store.Snapshot()
	if snap.SelectedProfile == "" {
		return nil
	}
	return l.loadAccounts(ctx, snap.Generation, snap.SelectedProfile)
}

func (l *Loader) loadAccounts(ctx context.Context, gen uint64, profileID string) error {
	list, err := l.backend.Accounts(ctx, profileID)
	if l.superseded(ctx, gen) {
		l.logger.Debug("discarding stale accounts", "gen", gen)
		return nil
	}
	if err != nil {
		return l.fail("accounts", err)
	}

	if !l.store.SetAccounts(gen, items(list)) {
		l.logger.Debug("discarding stale accounts", "gen", gen)
		return nil
	}

	_, accountID, _ := l.store.Selection()
	if accountID == "" {
		return nil
	}
	return l.loadFloodlightConfigs(ctx, gen, profileID, accountID)
}

// LoadFloodlightConfigs fetches the floodlight configurations of the selected account.
// It does nothing unless both a profile and an account are selected.
func (l *Loader) LoadFloodlightConfigs(ctx context.Context) error {
	snap := l.store.Snapshot()
	if snap.SelectedProfile == "" || snap.SelectedAccount == "" {
		return nil
	}
	return l.loadFloodlightConfigs(ctx, snap.Generation, snap.SelectedProfile, snap.SelectedAccount)
}

func (l *Loader) loadFloodlightConfigs(ctx context.Context, gen uint64, profileID, accountID string) error {
	list, err := l.backend.FloodlightConfigs(ctx, profileID, accountID)
	if l.superseded(ctx, gen) {
		l.logger.Debug("discarding stale floodlight configs", "gen", gen)
		return nil
	}
	if err != nil {
		return l.fail("floodlight configurations", err)
	}

	if !l.store.SetFloodlightConfigs(gen, items(list)) {
		l.logger.Debug("discarding stale floodlight configs", "gen", gen)
	}
	return nil
}

// LoadRecentFiles fetches the recent sheets and stores them with a relative recency label.
// A response without spreadsheets stores an empty list.
// A response that arrives after the store was reset or ctx was cancelled is dropped, and nil is returned.
func (l *Loader) LoadRecentFiles(ctx context.Context) ([]models.RecentFile, error) {
	session := l.store.Session()
	resp, err := l.backend.RecentSheets(ctx)
	if errors.Is(ctx.Err(), context.Canceled) || l.store.Session() != session {
		l.logger.Debug("discarding stale recent files", "session", session)
		return nil, nil
	}
	if err != nil {
		return nil, l.fail("recent files", err)
	}

	now := l.now()
	files := []models.RecentFile{}
	if resp != nil {
		for _, sheet := range resp.Spreadsheets {
			file := models.RecentFile{ID: sheet.ID, Name: sheet.Name, Link: sheet.Link}
			if at := sheet.ModifiedAt(); !at.IsZero() {
				file.Recency = formatter.RelativeDays(at, now)
			}
			files = append(files, file)
		}
	}

	if !l.store.SetRecentFiles(session, files) {
		l.logger.Debug("discarding stale recent files", "session", session)
		return nil, nil
	}
	return files, nil
}

// start cancels the running chain and begins a new one derived from ctx.
func (l *Loader) start(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	c := &chain{cancel: cancel}

	l.mu.Lock()
	if l.current != nil {
		l.current.cancel()
	}
	l.current = c
	l.mu.Unlock()

	return ctx, func() {
		l.mu.Lock()
		if l.current == c {
			l.current = nil
		}
		l.mu.Unlock()
		cancel()
	}
}

// SelectProfile selects profileID, persists it and loads its accounts and floodlight configurations.
//
// Dependent selections are cleared before any request starts. A previous chain still in flight is cancelled.
func (l *Loader) SelectProfile(ctx context.Context, profileID string) error {
	ctx, done := l.start(ctx)
	defer done()

	gen := l.store.SelectProfile(profileID)
	if l.prefs != nil {
		if err := l.prefs.Set(models.PrefProfileID, profileID); err != nil {
			l.logger.Warn("failed to persist profile id", "error", err)
		}
	}
	if profileID == "" {
		return nil
	}
	return l.loadAccounts(ctx, gen, profileID)
}

// SelectAccount selects accountID and loads its floodlight configurations, cancelling any chain in flight.
func (l *Loader) SelectAccount(ctx context.Context, accountID string) error {
	ctx, done := l.start(ctx)
	defer done()

	gen := l.store.SelectAccount(accountID)
	profileID, selected, _ := l.store.Selection()
	if profileID == "" || selected == "" {
		return nil
	}
	return l.loadFloodlightConfigs(ctx, gen, profileID, selected)
}

// Cancel stops the chain in flight, if any.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		l.current.cancel()
		l.current = nil
	}
}
