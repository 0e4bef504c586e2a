package store

import (
	"fmt"

	"github.com/desertthunder/floody/internal/shared"
)

// Route identifies the view shown by the main page.
type Route string

const (
	Loading    Route = "loading"
	Homepage   Route = "homepage"
	FileSelect Route = "fileSelect"
	CreateNew  Route = "createNew"
)

// Routes lists every valid route.
var Routes = []Route{Loading, Homepage, FileSelect, CreateNew}

// Valid reports whether r is one of [Routes].
func (r Route) Valid() bool {
	switch r {
	case Loading, Homepage, FileSelect, CreateNew:
		return true
	}
	return false
}

// ParseRoute converts a string into a [Route], failing with [shared.ErrInvalidRoute].
func ParseRoute(s string) (Route, error) {
	r := Route(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidRoute, s)
	}
	return r, nil
}

// HeaderKind selects the header bar rendered above a page, independently of the route.
type HeaderKind string

const (
	HeaderDefault HeaderKind = "default"
	HeaderManage  HeaderKind = "manage"
	HeaderGtm     HeaderKind = "gtm"
)
