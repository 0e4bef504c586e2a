package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/floody/internal/models"
)

// TokenRepository implements [models.Repository] for [models.OAuthToken] persistence.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Get retrieves the token stored for a provider
func (r *TokenRepository) Get(provider string) (*models.OAuthToken, error) {
	query := `
		SELECT provider, access_token, refresh_token, token_type, id_token, expiry, created_at, updated_at
		FROM oauth_tokens
		WHERE provider = ?
	`

	var (
		tok                         models.OAuthToken
		refresh, tokenType, idToken sql.NullString
		expiry                      sql.NullTime
	)

	err := r.db.QueryRow(query, provider).Scan(
		&tok.Provider, &tok.AccessToken, &refresh, &tokenType, &idToken, &expiry, &tok.Created, &tok.Updated,
	)
	if err != nil {
		return nil, notFound(err, "token", provider)
	}

	tok.RefreshToken = refresh.String
	tok.TokenType = tokenType.String
	tok.IDToken = idToken.String
	if expiry.Valid {
		tok.Expiry = expiry.Time
	}
	return &tok, nil
}

// Save inserts or replaces the token for its provider. A refresh token already on file is kept when the new token omits one.
func (r *TokenRepository) Save(tok *models.OAuthToken) error {
	if err := tok.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	if tok.Created.IsZero() {
		tok.Created = now
	}
	tok.Updated = now

	var expiry sql.NullTime
	if !tok.Expiry.IsZero() {
		expiry = sql.NullTime{Time: tok.Expiry.UTC(), Valid: true}
	}

	query := `
		INSERT INTO oauth_tokens (provider, access_token, refresh_token, token_type, id_token, expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = COALESCE(NULLIF(excluded.refresh_token, ''), oauth_tokens.refresh_token),
			token_type = excluded.token_type,
			id_token = COALESCE(NULLIF(excluded.id_token, ''), oauth_tokens.id_token),
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`
	_, err := r.db.Exec(query, tok.Provider, tok.AccessToken, tok.RefreshToken, tok.TokenType, tok.IDToken, expiry, tok.Created, tok.Updated)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Delete removes the token for a provider
func (r *TokenRepository) Delete(provider string) error {
	if _, err := r.db.Exec(`DELETE FROM oauth_tokens WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
