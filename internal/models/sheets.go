package models

import "time"

// FloodySheet describes a generated spreadsheet.
type FloodySheet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Link         string `json:"link,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}

// ModifiedAt parses LastModified as RFC 3339. The zero time is returned when the field is absent or malformed.
func (s FloodySheet) ModifiedAt() time.Time {
	if s.LastModified == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.LastModified)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RecentSheetsResponse is returned by /user/recentSheets.
type RecentSheetsResponse struct {
	Spreadsheets []FloodySheet `json:"spreadsheets"`
}

// ClientInformation is returned by /admin/clientId.
type ClientInformation struct {
	ClientID string `json:"clientId"`
}

// RecentFile is a recent sheet prepared for display.
type RecentFile struct {
	ID      string
	Name    string
	Link    string
	Recency string
}

// ShareRequest is the body of /admin/share/{id}. Empty lists are omitted.
type ShareRequest struct {
	Users  []string `json:"users,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

// HeartBeat echoes the caller's token back from /heart.
type HeartBeat struct {
	Timestamp string `json:"timestamp"`
	UserToken string `json:"userToken"`
	TokenInfo string `json:"tokenInfo,omitempty"`
}
