// package models defines the data model for the floody terminal client
package models

import (
	"time"
)

// Model defines the base interface for all persisted models.
// Implementations include [Preference] and [OAuthToken].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations on keyed models.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Get(id string) (T, error) // Get retrieves a model by its ID
	Save(model T) error       // Save inserts or replaces a model
	Delete(id string) error   // Delete removes a model from the database by its ID
}
