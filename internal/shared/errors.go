package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Domain errors surfaced to the user
	ErrNoProfile           = fmt.Errorf("Empty Profile: User does not have a Campaign Manager profile.")
	ErrIncompleteSelection = fmt.Errorf("Please ensure all values are filled.")
	ErrGtmRequestFailed    = fmt.Errorf("GTM request failed")

	// Client state errors
	ErrInvalidRoute = fmt.Errorf("invalid route")
	ErrStale        = fmt.Errorf("response superseded by a newer selection")

	// Input validation errors
	ErrPrecondition    = fmt.Errorf("precondition failed")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
