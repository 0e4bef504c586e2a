package store

// EventKind classifies store notifications.
type EventKind int

const (
	// EventChanged is emitted after any state mutation.
	EventChanged EventKind = iota
	// EventRouteChanged is emitted after SetRoute.
	EventRouteChanged
	// EventError carries an error for the shared error display.
	EventError
	// EventShowConsent asks the UI to show the product counsel notice.
	EventShowConsent
	// EventSignedIn is emitted once per sign-in, after the route change.
	EventSignedIn
	// EventSnackbar carries a transient status message.
	EventSnackbar
	// EventReset is emitted after the session was reset.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventRouteChanged:
		return "route-changed"
	case EventError:
		return "error"
	case EventShowConsent:
		return "show-consent"
	case EventSignedIn:
		return "signed-in"
	case EventSnackbar:
		return "snackbar"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a mutation.
type Event struct {
	Kind    EventKind
	Route   Route
	Err     error
	Message string
}

// Observer receives store events. It is called outside the store lock and may read the store.
type Observer func(Event)
