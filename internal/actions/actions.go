package actions

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
	"github.com/desertthunder/floody/internal/store"
)

const (
	msgInvalidSheet    = "Invalid Sheet Id selected."
	msgNoProfile       = "No valid profile ID selected. Please select a profile ID and try again"
	msgCommentRequired = "Comment is required for Rejection action"
	msgInvalidRequest  = "Invalid GTM request id."
	msgEmptyTitle      = "Spreadsheet title cannot be empty."

	MsgSharing    = "Sharing..."
	MsgExporting  = "Exporting..."
	MsgImporting  = "Importing..."
	MsgAddingRows = "Adding rows..."
	MsgRowsAdded  = "Successfully added 100 rows to the spreadsheet."
)

// PreconditionError is a failed local check. No request was sent.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

func (e *PreconditionError) Unwrap() error { return shared.ErrPrecondition }

// Backend is the subset of the Floody API used by the handlers.
type Backend interface {
	InitSheet(ctx context.Context, accountID, floodlightConfigID string) (*models.FloodySheet, error)
	CheckUserAuth(ctx context.Context, sheetID string) (*models.UserAuthResponse, error)
	Share(ctx context.Context, sheetID string, share models.ShareRequest) error
	ExportToDcm(ctx context.Context, sheetID string) (string, error)
	ImportFromDcm(ctx context.Context, sheetID string) (string, error)
	AddRows(ctx context.Context, sheetID string) error
	UpdateTitle(ctx context.Context, sheetID, title string) (*models.FloodySheet, error)
	CreateGtmRequest(ctx context.Context, req models.GtmExportRequest) (*models.GtmExportResponse, error)
	GtmRequest(ctx context.Context, id string) (*models.GtmExport, error)
	GtmAction(ctx context.Context, id string, action models.GtmAction, comment string) (*models.GtmTagOperationResults, error)
	Heartbeat(ctx context.Context) (*models.HeartBeat, error)
}

// Preferences holds the persisted profile id.
type Preferences interface {
	Value(key string) (string, bool, error)
	Set(key, value string) error
}

// Options configures [Handlers].
type Options struct {
	Store   *store.Store
	Backend Backend
	Prefs   Preferences
	Logger  *log.Logger
}

// Handlers runs user actions against the backend and reflects their outcome in the store.
type Handlers struct {
	store   *store.Store
	backend Backend
	prefs   Preferences
	logger  *log.Logger
}

// New creates the action [Handlers].
func New(opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Handlers{
		store:   opts.Store,
		backend: opts.Backend,
		prefs:   opts.Prefs,
		logger:  shared.WithLogger(opts.Logger, "component", "actions"),
	}
}

func (h *Handlers) precondition(msg string) error {
	err := &PreconditionError{Message: msg}
	h.logger.Warn("precondition failed", "message", msg)
	h.store.ReportError(err)
	return err
}

func (h *Handlers) fail(action string, err error) error {
	h.logger.Error("action failed", "action", action, "error", err)
	h.store.ReportError(err)
	return fmt.Errorf("%s: %w", action, err)
}

func (h *Handlers) requireSheet(sheetID string) error {
	if strings.TrimSpace(sheetID) == "" {
		return h.precondition(msgInvalidSheet)
	}
	return nil
}

// ProfileID returns the persisted profile id, or "" when none is stored.
func (h *Handlers) ProfileID() string {
	if h.prefs == nil {
		return ""
	}
	v, ok, err := h.prefs.Value(models.PrefProfileID)
	if err != nil || !ok {
		return ""
	}
	return v
}

func (h *Handlers) requireProfile() error {
	if h.ProfileID() == "" {
		return h.precondition(msgNoProfile)
	}
	return nil
}

// CreateSpreadsheet creates a sheet for the selected account and floodlight configuration.
//
// An incomplete selection sets the form's error message and returns [shared.ErrIncompleteSelection]
// without a request. Otherwise the route switches to LOADING until the backend answers; on failure the
// form is shown again.
func (h *Handlers) CreateSpreadsheet(ctx context.Context) (*models.FloodySheet, error) {
	if !h.store.ContentsAreValid() {
		h.store.SetErrorMessage(shared.ErrIncompleteSelection.Error())
		return nil, shared.ErrIncompleteSelection
	}

	h.store.ClearErrorMessage()
	_, accountID, configID := h.store.Selection()
	if err := h.store.SetRoute(store.Loading); err != nil {
		return nil, err
	}

	sheet, err := h.backend.InitSheet(ctx, accountID, configID)
	if err != nil {
		if rerr := h.store.SetRoute(store.CreateNew); rerr != nil {
			h.logger.Error("route", "error", rerr)
		}
		return nil, h.fail("create spreadsheet", err)
	}

	h.logger.Info("spreadsheet created", "id", sheet.ID, "name", sheet.Name)
	return sheet, nil
}

// CheckUserAuth loads the user's access to a sheet, persists the first valid profile and fills the manage header bar.
func (h *Handlers) CheckUserAuth(ctx context.Context, sheetID string) (*models.UserAuthResponse, error) {
	if err := h.requireSheet(sheetID); err != nil {
		return nil, err
	}

	resp, err := h.backend.CheckUserAuth(ctx, sheetID)
	if err != nil {
		return nil, h.fail("check user auth", err)
	}

	profileID := resp.FirstProfileID()
	if h.prefs != nil {
		if err := h.prefs.Set(models.PrefProfileID, profileID); err != nil {
			h.logger.Warn("failed to persist profile id", "error", err)
		}
	}

	h.store.SetActionBar(store.ActionBar{
		SelectedProfileID:   profileID,
		ValidProfiles:       resp.UserDcmProfiles,
		SpreadsheetTitle:    resp.SpreadsheetInformation.Name,
		UserAuthStatus:      resp.Status,
		UserAuthHelpMessage: resp.Status.HelpMessage(),
	})
	return resp, nil
}

// UseProfile switches the manage page to another of the sheet's valid profiles.
func (h *Handlers) UseProfile(profileID string) error {
	if profileID == "" {
		return h.precondition(msgNoProfile)
	}
	if h.prefs != nil {
		if err := h.prefs.Set(models.PrefProfileID, profileID); err != nil {
			return h.fail("select profile", err)
		}
	}

	bar := h.store.Snapshot().ActionBar
	bar.SelectedProfileID = profileID
	h.store.SetActionBar(bar)
	return nil
}

// Share grants users and groups access to the sheet. Empty lists are omitted from the request.
func (h *Handlers) Share(ctx context.Context, sheetID string, users, groups []string) error {
	if err := h.requireSheet(sheetID); err != nil {
		return err
	}

	req := models.ShareRequest{}
	if len(users) > 0 {
		req.Users = users
	}
	if len(groups) > 0 {
		req.Groups = groups
	}

	if err := h.backend.Share(ctx, sheetID, req); err != nil {
		return h.fail("share", err)
	}
	h.store.Snackbar(MsgSharing)
	return nil
}

// ExportToDcm pushes the sheet's activities to Campaign Manager and returns the backend report.
func (h *Handlers) ExportToDcm(ctx context.Context, sheetID string) (string, error) {
	if err := h.requireSheet(sheetID); err != nil {
		return "", err
	}
	if err := h.requireProfile(); err != nil {
		return "", err
	}

	h.store.Snackbar(MsgExporting)
	report, err := h.backend.ExportToDcm(ctx, sheetID)
	if err != nil {
		return "", h.fail("export to CM", err)
	}
	return report, nil
}

// ImportFromDcm refreshes the sheet from Campaign Manager and returns the backend report.
func (h *Handlers) ImportFromDcm(ctx context.Context, sheetID string) (string, error) {
	if err := h.requireSheet(sheetID); err != nil {
		return "", err
	}
	if err := h.requireProfile(); err != nil {
		return "", err
	}

	h.store.Snackbar(MsgImporting)
	report, err := h.backend.ImportFromDcm(ctx, sheetID)
	if err != nil {
		return "", h.fail("import from CM", err)
	}
	return report, nil
}

// AddRows appends 100 rows to the sheet.
func (h *Handlers) AddRows(ctx context.Context, sheetID string) error {
	if err := h.requireSheet(sheetID); err != nil {
		return err
	}

	h.store.Snackbar(MsgAddingRows)
	if err := h.backend.AddRows(ctx, sheetID); err != nil {
		return h.fail("add rows", err)
	}
	h.store.Snackbar(MsgRowsAdded)
	return nil
}

// RenameSheet sets a new title and updates the manage header bar.
func (h *Handlers) RenameSheet(ctx context.Context, sheetID, title string) (*models.FloodySheet, error) {
	if err := h.requireSheet(sheetID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, h.precondition(msgEmptyTitle)
	}

	sheet, err := h.backend.UpdateTitle(ctx, sheetID, title)
	if err != nil {
		return nil, h.fail("rename", err)
	}

	bar := h.store.Snapshot().ActionBar
	bar.SpreadsheetTitle = sheet.Name
	if bar.SpreadsheetTitle == "" {
		bar.SpreadsheetTitle = title
	}
	h.store.SetActionBar(bar)
	return sheet, nil
}

// GtmSubmission is the user input of the GTM request dialog.
type GtmSubmission struct {
	ContainerID string
	Message     string
	Approvers   []string
}

// SubmitGtmRequest asks the approvers to push the sheet's activities to a GTM container.
func (h *Handlers) SubmitGtmRequest(ctx context.Context, sheetID string, in GtmSubmission) (*models.GtmExportResponse, error) {
	if err := h.requireSheet(sheetID); err != nil {
		return nil, err
	}

	approvers := in.Approvers
	if approvers == nil {
		approvers = []string{}
	}
	resp, err := h.backend.CreateGtmRequest(ctx, models.GtmExportRequest{
		SpreadsheetID:    sheetID,
		GtmContainerID:   strings.TrimSpace(in.ContainerID),
		RequesterMessage: strings.TrimSpace(in.Message),
		ApproverEmails:   approvers,
	})
	if err != nil {
		return nil, h.fail("submit GTM request", err)
	}
	return resp, nil
}

// LoadGtmRequest fetches a stored GTM request.
func (h *Handlers) LoadGtmRequest(ctx context.Context, id string) (*models.GtmExport, error) {
	if strings.TrimSpace(id) == "" {
		return nil, h.precondition(msgInvalidRequest)
	}

	req, err := h.backend.GtmRequest(ctx, id)
	if err != nil {
		return nil, h.fail("load GTM request", err)
	}
	return req, nil
}

// SendGtmAction approves or rejects a GTM request.
//
// Rejecting requires a comment. A missing comment is shown as a snackbar and no request is sent.
func (h *Handlers) SendGtmAction(ctx context.Context, id string, action models.GtmAction, comment string) (*models.GtmTagOperationResults, error) {
	if strings.TrimSpace(id) == "" {
		return nil, h.precondition(msgInvalidRequest)
	}
	parsed, ok := models.ParseGtmAction(string(action))
	if !ok {
		return nil, h.precondition(fmt.Sprintf("Unknown GTM action %q.", action))
	}
	action = parsed
	if action == models.GtmReject && strings.TrimSpace(comment) == "" {
		h.store.Snackbar(msgCommentRequired)
		return nil, &PreconditionError{Message: msgCommentRequired}
	}

	res, err := h.backend.GtmAction(ctx, id, action, comment)
	if err != nil {
		return nil, h.fail("GTM "+string(action), err)
	}
	return res, nil
}

// Heartbeat checks that the backend accepts the current token.
func (h *Handlers) Heartbeat(ctx context.Context) (*models.HeartBeat, error) {
	hb, err := h.backend.Heartbeat(ctx)
	if err != nil {
		return nil, fmt.Errorf("heartbeat: %w", err)
	}
	return hb, nil
}
