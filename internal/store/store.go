package store

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
)

// ActionBar is the header bar content of the manage page.
type ActionBar struct {
	SelectedProfileID   string
	ValidProfiles       []models.DcmObject
	SpreadsheetTitle    string
	UserAuthStatus      models.UserAuthStatus
	UserAuthHelpMessage string
}

// Snapshot is a point-in-time copy of the store. Mutating it does not affect the store.
type Snapshot struct {
	Route          Route
	ClientID       string
	IsSignedIn     bool
	Email          string
	ProfilePicture string

	// Nil until loaded.
	Profiles          []models.DcmObject
	Accounts          []models.DcmObject
	FloodlightConfigs []models.DcmObject

	SelectedProfile          string
	SelectedAccount          string
	SelectedFloodlightConfig string

	// Nil until loaded; empty once loaded without results.
	RecentFiles []models.RecentFile

	ErrorMessage string
	Generation   uint64
	// Session changes on every Reset; loads that outlive a sign-out compare against it.
	Session   uint64
	ActionBar ActionBar
	LastError    error
}

// ContentsAreValid reports whether profile, account and floodlight configuration are all selected.
func (s Snapshot) ContentsAreValid() bool {
	return s.SelectedProfile != "" && s.SelectedAccount != "" && s.SelectedFloodlightConfig != ""
}

type subscription struct {
	id int
	fn Observer
}

// Store is the session state shared by the auth gateway, loader, action handlers and UI.
// It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	state     Snapshot
	observers []subscription
	nextID    int
	logger    *log.Logger
}

// New creates a [Store] with the initial LOADING route.
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		state:  Snapshot{Route: Loading},
		logger: shared.WithLogger(logger, "component", "store"),
	}
}

// Subscribe registers an observer and returns a function that removes it.
// Observers are called in registration order.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies fn under the lock and then notifies observers with the returned events.
func (s *Store) update(fn func(st *Snapshot) []Event) {
	s.mu.Lock()
	events := fn(&s.state)
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, ev := range events {
		for _, sub := range observers {
			sub.fn(ev)
		}
	}
}

func changed() []Event { return []Event{{Kind: EventChanged}} }

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (st Snapshot) clone() Snapshot {
	out := st
	out.Profiles = cloneSlice(st.Profiles)
	out.Accounts = cloneSlice(st.Accounts)
	out.FloodlightConfigs = cloneSlice(st.FloodlightConfigs)
	out.RecentFiles = cloneSlice(st.RecentFiles)
	out.ActionBar.ValidProfiles = cloneSlice(st.ActionBar.ValidProfiles)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// Route returns the current route.
func (s *Store) Route() Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Route
}

// IsSignedIn returns the current auth state.
func (s *Store) IsSignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsSignedIn
}

// ClientID returns the OAuth client id fetched from the backend.
func (s *Store) ClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ClientID
}

// Selection returns the selected profile, account and floodlight configuration.
func (s *Store) Selection() (profile, account, floodlightConfig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedProfile, s.state.SelectedAccount, s.state.SelectedFloodlightConfig
}

// Generation returns the current selection generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Generation
}

// Session returns the current session number.
func (s *Store) Session() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session
}

// ContentsAreValid reports whether all three selections are non-empty.
func (s *Store) ContentsAreValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ContentsAreValid()
}

// SetRoute switches the main page view. Unknown routes are rejected and leave the store untouched.
func (s *Store) SetRoute(r Route) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrInvalidRoute, string(r))
	}

	s.logger.Debug("route", "to", r)
	s.update(func(st *Snapshot) []Event {
		st.Route = r
		return []Event{{Kind: EventRouteChanged, Route: r}}
	})
	return nil
}

// SetClientID stores the OAuth client id.
func (s *Store) SetClientID(id string) {
	s.update(func(st *Snapshot) []Event {
		st.ClientID = id
		return changed()
	})
}

// SetSignedIn records the auth state and reports whether it changed.
//
// The compare and set happen under one lock, so concurrent sign-in signals produce exactly one transition.
func (s *Store) SetSignedIn(signedIn bool) (transitioned bool) {
	s.update(func(st *Snapshot) []Event {
		if st.IsSignedIn == signedIn {
			return nil
		}
		st.IsSignedIn = signedIn
		if !signedIn {
			st.Email = ""
			st.ProfilePicture = ""
		}
		transitioned = true
		return changed()
	})
	return transitioned
}

// SetIdentity stores the signed-in user's email and avatar URL.
func (s *Store) SetIdentity(email, picture string) {
	s.update(func(st *Snapshot) []Event {
		st.Email = email
		st.ProfilePicture = picture
		return changed()
	})
}

// SetProfiles replaces the loaded profiles.
func (s *Store) SetProfiles(items []models.DcmObject) {
	s.update(func(st *Snapshot) []Event {
		st.Profiles = cloneSlice(items)
		if st.Profiles == nil {
			st.Profiles = []models.DcmObject{}
		}
		return changed()
	})
}

// SelectProfile selects a profile and clears every dependent selection and list before any load starts.
// It returns the new generation that loads for this profile must carry.
func (s *Store) SelectProfile(id string) (gen uint64) {
	s.update(func(st *Snapshot) []Event {
		st.SelectedProfile = id
		st.SelectedAccount = ""
		st.SelectedFloodlightConfig = ""
		st.Accounts = nil
		st.FloodlightConfigs = nil
		st.Generation++
		gen = st.Generation
		return changed()
	})
	return gen
}

// SetAccounts stores the accounts loaded under gen and auto-selects the first one.
// It returns false and changes nothing when gen is no longer current or no profile is selected.
func (s *Store) SetAccounts(gen uint64, items []models.DcmObject) (applied bool) {
	s.update(func(st *Snapshot) []Event {
		if gen != st.Generation || st.SelectedProfile == "" {
			return nil
		}
		st.Accounts = cloneSlice(items)
		if st.Accounts == nil {
			st.Accounts = []models.DcmObject{}
		}
		if len(items) > 0 {
			st.SelectedAccount = items[0].ID.String()
		}
		applied = true
		return changed()
	})
	return applied
}

// SelectAccount selects an account and clears the floodlight configuration selection.
// It returns the new generation. Selecting an account without a profile is ignored and returns the current generation.
func (s *Store) SelectAccount(id string) (gen uint64) {
	s.update(func(st *Snapshot) []Event {
		if st.SelectedProfile == "" {
			gen = st.Generation
			return nil
		}
		st.SelectedAccount = id
		st.SelectedFloodlightConfig = ""
		st.FloodlightConfigs = nil
		st.Generation++
		gen = st.Generation
		return changed()
	})
	return gen
}

// SetFloodlightConfigs stores the configurations loaded under gen.
// It returns false and changes nothing when gen is no longer current.
func (s *Store) SetFloodlightConfigs(gen uint64, items []models.DcmObject) (applied bool) {
	s.update(func(st *Snapshot) []Event {
		if gen != st.Generation || st.SelectedAccount == "" {
			return nil
		}
		st.FloodlightConfigs = cloneSlice(items)
		if st.FloodlightConfigs == nil {
			st.FloodlightConfigs = []models.DcmObject{}
		}
		applied = true
		return changed()
	})
	return applied
}

// SelectFloodlightConfig selects a floodlight configuration. It is ignored without an account.
func (s *Store) SelectFloodlightConfig(id string) {
	s.update(func(st *Snapshot) []Event {
		if st.SelectedAccount == "" {
			return nil
		}
		st.SelectedFloodlightConfig = id
		return changed()
	})
}

// SetRecentFiles replaces the recent files loaded during session. A nil slice is stored as empty so the view stops waiting.
// It returns false and changes nothing when the store has been reset since the load started.
func (s *Store) SetRecentFiles(session uint64, files []models.RecentFile) (applied bool) {
	s.update(func(st *Snapshot) []Event {
		if session != st.Session {
			return nil
		}
		st.RecentFiles = cloneSlice(files)
		if st.RecentFiles == nil {
			st.RecentFiles = []models.RecentFile{}
		}
		applied = true
		return changed()
	})
	return applied
}

// SetErrorMessage sets the validation message of the create form.
func (s *Store) SetErrorMessage(msg string) {
	s.update(func(st *Snapshot) []Event {
		st.ErrorMessage = msg
		return changed()
	})
}

// ClearErrorMessage removes the validation message.
func (s *Store) ClearErrorMessage() { s.SetErrorMessage("") }

// SetActionBar replaces the manage header bar contents.
func (s *Store) SetActionBar(bar ActionBar) {
	bar.ValidProfiles = cloneSlice(bar.ValidProfiles)
	s.update(func(st *Snapshot) []Event {
		st.ActionBar = bar
		return changed()
	})
}

// ReportError records err and emits [EventError]. Nil errors are ignored.
func (s *Store) ReportError(err error) {
	if err == nil {
		return
	}
	s.logger.Error("reported", "error", err)
	s.update(func(st *Snapshot) []Event {
		st.LastError = err
		return []Event{{Kind: EventError, Err: err}}
	})
}

// ClearError forgets the last reported error.
func (s *Store) ClearError() {
	s.update(func(st *Snapshot) []Event {
		st.LastError = nil
		return changed()
	})
}

// Snackbar emits a transient status message.
func (s *Store) Snackbar(msg string) {
	s.update(func(*Snapshot) []Event {
		return []Event{{Kind: EventSnackbar, Message: msg}}
	})
}

// Notify emits a signal event such as [EventShowConsent] or [EventSignedIn] without changing state.
func (s *Store) Notify(kind EventKind) {
	s.update(func(st *Snapshot) []Event {
		return []Event{{Kind: kind, Route: st.Route}}
	})
}

// Reset returns the store to its initial state, keeping only the OAuth client id.
func (s *Store) Reset() {
	s.update(func(st *Snapshot) []Event {
		clientID := st.ClientID
		*st = Snapshot{Route: Loading, ClientID: clientID, Generation: st.Generation + 1, Session: st.Session + 1}
		return []Event{{Kind: EventReset}}
	})
}
