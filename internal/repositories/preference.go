package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
)

// PreferenceRepository implements [models.Repository] for [models.Preference] persistence.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get retrieves a preference by key
func (r *PreferenceRepository) Get(key string) (*models.Preference, error) {
	query := `SELECT key, value, updated_at FROM preferences WHERE key = ?`

	var pref models.Preference
	if err := r.db.QueryRow(query, key).Scan(&pref.Key, &pref.Value, &pref.Modified); err != nil {
		return nil, notFound(err, "preference", key)
	}
	return &pref, nil
}

// Save inserts or replaces a preference
func (r *PreferenceRepository) Save(pref *models.Preference) error {
	if err := pref.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	pref.Modified = time.Now().UTC()
	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, pref.Key, pref.Value, pref.Modified); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// Delete removes a preference. Deleting a missing key is not an error.
func (r *PreferenceRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	return nil
}

// Value returns the stored value for key and whether it was present.
func (r *PreferenceRepository) Value(key string) (string, bool, error) {
	pref, err := r.Get(key)
	if errors.Is(err, shared.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return pref.Value, true, nil
}

// Set stores value under key.
func (r *PreferenceRepository) Set(key, value string) error {
	return r.Save(&models.Preference{Key: key, Value: value})
}

// Remove deletes every given key in one transaction.
func (r *PreferenceRepository) Remove(keys ...string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete preference %s: %w", key, err)
		}
	}
	return tx.Commit()
}
