package models

// UserAuthStatus summarises a user's access to a spreadsheet and its CM account.
type UserAuthStatus string

const (
	FullAuth      UserAuthStatus = "FULL_AUTH"
	NoAuth        UserAuthStatus = "NO_AUTH"
	DcmOnlyAuth   UserAuthStatus = "DCM_ONLY_AUTH"
	SheetOnlyAuth UserAuthStatus = "SHEET_ONLY_AUTH"
)

// HelpMessage returns the hint shown in the manage header for partial or missing access.
func (s UserAuthStatus) HelpMessage() string {
	switch s {
	case NoAuth:
		return "Selected Google account doesn't have CM and Spreadsheet access."
	case DcmOnlyAuth:
		return "Selected Google account does not have access to this Spreadsheet."
	case SheetOnlyAuth:
		return "Selected Google account does not have a User Profile in the linked CM account."
	default:
		return ""
	}
}

// UserAuthResponse is returned by /user/checkUserAuth/{sheetId}.
type UserAuthResponse struct {
	Status                 UserAuthStatus  `json:"status"`
	UserDcmProfiles        []DcmObject     `json:"userDcmProfiles"`
	SpreadsheetInformation FloodySheet     `json:"spreadsheetInformation"`
	DcmInformation         *DcmInformation `json:"dcmInformation,omitempty"`
}

// FirstProfileID returns the id of the first valid profile, or "" when there are none.
func (r UserAuthResponse) FirstProfileID() string {
	if len(r.UserDcmProfiles) == 0 {
		return ""
	}
	return r.UserDcmProfiles[0].ID.String()
}
