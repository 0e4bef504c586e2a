// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
)

var (
	_ models.Repository[*models.Preference] = (*PreferenceRepository)(nil)
	_ models.Repository[*models.OAuthToken] = (*TokenRepository)(nil)
)

// notFound maps [sql.ErrNoRows] to [shared.ErrNotFound] so callers can test with errors.Is.
func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, id)
	}
	return fmt.Errorf("failed to query %s: %w", kind, err)
}
