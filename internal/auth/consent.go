package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/floody/internal/models"
)

// ConsentTTL is how long an acknowledged product counsel notice stays hidden.
const ConsentTTL = 24 * time.Hour

// ConsentNotice is the product counsel notice, one line per entry.
var ConsentNotice = []string{
	"Floody changes live Campaign Manager floodlight activities and Tag Manager containers.",
	"Review every sheet with the advertiser before exporting or approving a GTM request.",
}

// Consent tracks the product counsel notice.
type Consent struct {
	prefs Preferences
}

// NewConsent creates a new [Consent].
func NewConsent(prefs Preferences) *Consent {
	return &Consent{prefs: prefs}
}

// Due reports whether the notice should be shown: the expiry is missing, unreadable or in the past.
func (c *Consent) Due(now time.Time) bool {
	raw, ok, err := c.prefs.Value(models.PrefConsentExpiresAt)
	if err != nil || !ok {
		return true
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return ms < now.UnixMilli()
}

// Acknowledge hides the notice for [ConsentTTL].
func (c *Consent) Acknowledge(now time.Time) error {
	expiry := now.Add(ConsentTTL).UnixMilli()
	if err := c.prefs.Set(models.PrefConsentExpiresAt, strconv.FormatInt(expiry, 10)); err != nil {
		return fmt.Errorf("failed to store consent expiry: %w", err)
	}
	return nil
}

// ShowIfDue reports whether the notice is due and, if so, acknowledges it so the next window starts now.
func (c *Consent) ShowIfDue(now time.Time) (bool, error) {
	if !c.Due(now) {
		return false, nil
	}
	return true, c.Acknowledge(now)
}
