package floody

import (
	"context"
	"net/url"
	"strings"

	"github.com/desertthunder/floody/internal/models"
)

// ClientID fetches the OAuth client id published by the backend. This call is unauthenticated.
func (c *Client) ClientID(ctx context.Context) (string, error) {
	var info models.ClientInformation
	if err := c.doJSON(ctx, request{method: "GET", path: "/admin/clientId", public: true}, &info); err != nil {
		return "", err
	}
	return strings.TrimSpace(info.ClientID), nil
}

// Profiles lists the signed-in user's CM profiles.
func (c *Client) Profiles(ctx context.Context) (*models.DcmObjectList, error) {
	var list models.DcmObjectList
	if err := c.doJSON(ctx, request{method: "GET", path: "/user/profiles"}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Accounts lists the CM accounts visible to a profile.
func (c *Client) Accounts(ctx context.Context, profileID string) (*models.DcmObjectList, error) {
	var list models.DcmObjectList
	path := "/user/accounts/" + url.PathEscape(profileID)
	if err := c.doJSON(ctx, request{method: "GET", path: path}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// FloodlightConfigs lists the floodlight configurations of an account.
func (c *Client) FloodlightConfigs(ctx context.Context, profileID, accountID string) (*models.DcmObjectList, error) {
	var list models.DcmObjectList
	path := "/user/floodlightconfigs/" + url.PathEscape(profileID) + "?accountId=" + url.QueryEscape(accountID)
	if err := c.doJSON(ctx, request{method: "GET", path: path}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RecentSheets lists the user's recently modified Floody spreadsheets.
func (c *Client) RecentSheets(ctx context.Context) (*models.RecentSheetsResponse, error) {
	var resp models.RecentSheetsResponse
	if err := c.doJSON(ctx, request{method: "GET", path: "/user/recentSheets"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InitSheet creates a new Floody spreadsheet for an account and floodlight configuration.
func (c *Client) InitSheet(ctx context.Context, accountID, floodlightConfigID string) (*models.FloodySheet, error) {
	var sheet models.FloodySheet
	path := "/admin/init/" + url.PathEscape(accountID) + "/" + url.PathEscape(floodlightConfigID)
	if err := c.doJSON(ctx, request{method: "POST", path: path}, &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// CheckUserAuth reports the user's access to a spreadsheet.
func (c *Client) CheckUserAuth(ctx context.Context, sheetID string) (*models.UserAuthResponse, error) {
	var resp models.UserAuthResponse
	path := "/user/checkUserAuth/" + url.PathEscape(sheetID)
	if err := c.doJSON(ctx, request{method: "GET", path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Share grants users and groups access to a spreadsheet.
func (c *Client) Share(ctx context.Context, sheetID string, share models.ShareRequest) error {
	path := "/admin/share/" + url.PathEscape(sheetID)
	_, err := c.doRequest(ctx, request{method: "POST", path: path, body: share})
	return err
}

// ExportToDcm pushes the spreadsheet's activities to Campaign Manager and returns the backend's text report.
func (c *Client) ExportToDcm(ctx context.Context, sheetID string) (string, error) {
	body, err := c.doRequest(ctx, request{method: "GET", path: "/floody/exportToDcm/" + url.PathEscape(sheetID)})
	return string(body), err
}

// ImportFromDcm refreshes the spreadsheet from Campaign Manager and returns the backend's text report.
func (c *Client) ImportFromDcm(ctx context.Context, sheetID string) (string, error) {
	body, err := c.doRequest(ctx, request{method: "GET", path: "/floody/exportToSheet/" + url.PathEscape(sheetID)})
	return string(body), err
}

// AddRows appends 100 empty rows to the spreadsheet.
func (c *Client) AddRows(ctx context.Context, sheetID string) error {
	_, err := c.doRequest(ctx, request{method: "GET", path: "/admin/addRows/" + url.PathEscape(sheetID)})
	return err
}

// UpdateTitle renames the spreadsheet.
func (c *Client) UpdateTitle(ctx context.Context, sheetID, title string) (*models.FloodySheet, error) {
	var sheet models.FloodySheet
	path := "/admin/updateTitle/" + url.PathEscape(sheetID) + "/" + url.PathEscape(title)
	if err := c.doJSON(ctx, request{method: "GET", path: path}, &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// CreateGtmRequest submits a GTM export for approval.
func (c *Client) CreateGtmRequest(ctx context.Context, req models.GtmExportRequest) (*models.GtmExportResponse, error) {
	var resp models.GtmExportResponse
	if err := c.doJSON(ctx, request{method: "POST", path: "/gtmrequest/create", body: req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GtmRequest fetches a stored GTM request.
func (c *Client) GtmRequest(ctx context.Context, id string) (*models.GtmExport, error) {
	var export models.GtmExport
	if err := c.doJSON(ctx, request{method: "GET", path: "/gtmrequest/" + url.PathEscape(id)}, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// GtmAction approves or rejects a GTM request. The comment is sent verbatim as the request body.
func (c *Client) GtmAction(ctx context.Context, id string, action models.GtmAction, comment string) (*models.GtmTagOperationResults, error) {
	var results models.GtmTagOperationResults
	path := "/gtmrequest/" + url.PathEscape(id) + ":" + string(action)
	if err := c.doJSON(ctx, request{method: "POST", path: path, body: comment}, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Heartbeat echoes the caller's token and token info.
func (c *Client) Heartbeat(ctx context.Context) (*models.HeartBeat, error) {
	var hb models.HeartBeat
	if err := c.doJSON(ctx, request{method: "GET", path: "/heart"}, &hb); err != nil {
		return nil, err
	}
	return &hb, nil
}
