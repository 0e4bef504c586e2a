package models

import (
	"fmt"
	"time"
)

// Well known preference keys.
const (
	PrefProfileID        = "profileId"
	PrefConsentExpiresAt = "ProductCounselDisclaimerExpiry"
)

// Preference is a persisted session key.
type Preference struct {
	Key      string
	Value    string
	Modified time.Time
}

func (p *Preference) ID() string           { return p.Key }
func (p *Preference) CreatedAt() time.Time { return p.Modified }
func (p *Preference) UpdatedAt() time.Time { return p.Modified }

func (p *Preference) Validate() error {
	if p.Key == "" {
		return fmt.Errorf("preference key is required")
	}
	return nil
}

// OAuthToken is the persisted token of a signed-in user.
type OAuthToken struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	TokenType    string
	IDToken      string
	Expiry       time.Time
	Created      time.Time
	Updated      time.Time
}

func (t *OAuthToken) ID() string           { return t.Provider }
func (t *OAuthToken) CreatedAt() time.Time { return t.Created }
func (t *OAuthToken) UpdatedAt() time.Time { return t.Updated }

func (t *OAuthToken) Validate() error {
	if t.Provider == "" {
		return fmt.Errorf("token provider is required")
	}
	if t.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	return nil
}
