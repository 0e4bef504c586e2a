package models

import "strings"

// GtmAction is an approver decision on a GTM request.
type GtmAction string

const (
	GtmApprove GtmAction = "approve"
	GtmReject  GtmAction = "reject"
)

// ParseGtmAction accepts approve or reject in any case.
func ParseGtmAction(s string) (GtmAction, bool) {
	switch a := GtmAction(strings.ToLower(strings.TrimSpace(s))); a {
	case GtmApprove, GtmReject:
		return a, true
	default:
		return "", false
	}
}

// GtmExportRequest is the body of /gtmrequest/create.
type GtmExportRequest struct {
	SpreadsheetID    string   `json:"spreadsheetId"`
	GtmContainerID   string   `json:"gtmContainerId"`
	RequesterMessage string   `json:"requesterMessage,omitempty"`
	ApproverEmails   []string `json:"approverEmails"`
}

// GtmExportStatus reports whether the request was stored.
type GtmExportStatus struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// GtmExportResponse is returned by /gtmrequest/create.
type GtmExportResponse struct {
	Request    *GtmExport      `json:"request,omitempty"`
	RequestID  string          `json:"requestId"`
	RequestURI string          `json:"requestUri,omitempty"`
	Status     GtmExportStatus `json:"status"`
}

// GtmFloodlightActivity is one activity tag queued for the container.
type GtmFloodlightActivity struct {
	Name            string   `json:"name"`
	DcmAdvertiserID DcmID    `json:"dcmAdvertiserId,omitempty"`
	Type            string   `json:"type,omitempty"`
	Cat             string   `json:"cat,omitempty"`
	CountingMethod  string   `json:"countingMethod,omitempty"`
	CustomVariables []string `json:"customVariables,omitempty"`
}

// ActionInformation records who approved or rejected a request.
type ActionInformation struct {
	Timestamp  string `json:"timestamp,omitempty"`
	Authorizer string `json:"authorizer,omitempty"`
	Action     string `json:"action,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// TagOperationResult is the outcome of writing one activity tag.
type TagOperationResult struct {
	FloodlightActivityName string `json:"floodlightActivityName"`
	Success                bool   `json:"success"`
	Message                string `json:"message,omitempty"`
}

// GtmTagOperationResults is returned by /gtmrequest/{id}:{action}.
type GtmTagOperationResults struct {
	Action                string               `json:"action"`
	Success               bool                 `json:"success"`
	GtmTagOperationResult []TagOperationResult `json:"gtmTagOperationResult"`
}

// Failed returns the results that did not succeed.
func (r GtmTagOperationResults) Failed() []TagOperationResult {
	var out []TagOperationResult
	for _, res := range r.GtmTagOperationResult {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// GtmExport is a stored GTM request as returned by /gtmrequest/{id}.
type GtmExport struct {
	ID                     DcmID                   `json:"id"`
	GtmContainerID         string                  `json:"gtmContainerId"`
	RequesterEmail         string                  `json:"requesterEmail"`
	SpreadsheetID          string                  `json:"spreadsheetId"`
	RequesterMessage       string                  `json:"requesterMessage,omitempty"`
	ApproverEmails         []string                `json:"approverEmails"`
	FloodlightActivities   []GtmFloodlightActivity `json:"floodlightActivities"`
	Timestamp              string                  `json:"timestamp,omitempty"`
	ActionInformation      *ActionInformation      `json:"actionInformation,omitempty"`
	GtmTagOperationResults []TagOperationResult    `json:"gtmTagOperationResults,omitempty"`
}

// Pending reports whether no approver has acted on the request yet.
func (e GtmExport) Pending() bool {
	return e.ActionInformation == nil || e.ActionInformation.Action == ""
}
