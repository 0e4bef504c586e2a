package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/floody/internal/auth"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/store"
)

// Field is a row of the create form.
type Field int

const (
	FieldProfile Field = iota
	FieldAccount
	FieldFloodlightConfig
	FieldSubmit
)

const fieldCount = 4

// Frame is the view state that lives outside the store.
type Frame struct {
	Spinner string
	Cursor  int
	Focus   Field
}

// Render draws the header and the main page body for a store snapshot.
func Render(snap store.Snapshot, header store.HeaderKind) string {
	return RenderFrame(snap, header, Frame{Spinner: "…"})
}

// RenderFrame is [Render] with explicit view state.
func RenderFrame(snap store.Snapshot, header store.HeaderKind, f Frame) string {
	return lipgloss.JoinVertical(lipgloss.Left, renderHeader(snap, header), "", renderRoute(snap, f))
}

func renderHeader(snap store.Snapshot, kind store.HeaderKind) string {
	title := styles.header.Render("Floody")
	switch kind {
	case store.HeaderManage:
		title += " " + styles.focus.Render("Manage")
	case store.HeaderGtm:
		title += " " + styles.focus.Render("GTM request")
	}

	lines := []string{title}
	if snap.IsSignedIn {
		lines = append(lines, renderBadge(snap))
	}
	if kind == store.HeaderManage {
		lines = append(lines, renderActionBar(snap.ActionBar))
	}
	return strings.Join(lines, "\n")
}

func renderBadge(snap store.Snapshot) string {
	badge := styles.badge.Render("● " + snap.Email)
	if snap.ProfilePicture != "" {
		badge += " " + styles.help.Render(snap.ProfilePicture)
	}
	return badge
}

func renderActionBar(bar store.ActionBar) string {
	var b strings.Builder
	title := bar.SpreadsheetTitle
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "Sheet: %s\n", styles.focus.Render(title))

	profile := "none"
	if bar.SelectedProfileID != "" {
		profile = labelOf(bar.ValidProfiles, bar.SelectedProfileID)
	}
	fmt.Fprintf(&b, "Profile: %s (%d valid)\n", profile, len(bar.ValidProfiles))

	if bar.UserAuthStatus != "" {
		status := string(bar.UserAuthStatus)
		if bar.UserAuthStatus == models.FullAuth {
			b.WriteString("Access: " + styles.ok.Render(status))
		} else {
			b.WriteString("Access: " + styles.warn.Render(status))
		}
	}
	if bar.UserAuthHelpMessage != "" {
		b.WriteString("\n" + styles.warn.Render(bar.UserAuthHelpMessage))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRoute(snap store.Snapshot, f Frame) string {
	switch snap.Route {
	case store.Homepage:
		return renderHomepage()
	case store.FileSelect:
		return renderFileSelect(snap, f)
	case store.CreateNew:
		return renderCreateNew(snap, f)
	default:
		return f.Spinner + " Loading..."
	}
}

func renderHomepage() string {
	return strings.Join([]string{
		styles.title.Render("Welcome to Floody"),
		"Manage Campaign Manager floodlight activities from a generated Google spreadsheet.",
		"Sign in with a Google account that has Campaign Manager access to continue.",
	}, "\n")
}

func renderFileSelect(snap store.Snapshot, f Frame) string {
	title := styles.title.Render("Recent sheets")
	if snap.RecentFiles == nil {
		return title + "\n" + f.Spinner + " Loading recent sheets..."
	}
	if len(snap.RecentFiles) == 0 {
		return title + "\n" + styles.help.Render("No recent sheets. Create a new one to get started.")
	}
	return title + "\n" + renderItems(fileItems(snap.RecentFiles), f.Cursor)
}

func renderCreateNew(snap store.Snapshot, f Frame) string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Create a new Floody sheet"))
	b.WriteString("\n")

	rows := []struct {
		field    Field
		label    string
		options  []models.DcmObject
		selected string
		ready    bool
	}{
		{FieldProfile, "Profile", snap.Profiles, snap.SelectedProfile, true},
		{FieldAccount, "Account", snap.Accounts, snap.SelectedAccount, snap.SelectedProfile != ""},
		{FieldFloodlightConfig, "Floodlight configuration", snap.FloodlightConfigs, snap.SelectedFloodlightConfig, snap.SelectedAccount != ""},
	}

	for _, row := range rows {
		var value string
		switch {
		case !row.ready:
			value = styles.help.Render("-")
		case row.options == nil:
			value = f.Spinner + " loading"
		case len(row.options) == 0:
			value = styles.warn.Render("none available")
		case row.selected == "":
			value = styles.help.Render(fmt.Sprintf("choose one of %d", len(row.options)))
		default:
			value = fmt.Sprintf("%s (%d/%d)", labelOf(row.options, row.selected), indexOf(row.options, row.selected)+1, len(row.options))
		}
		b.WriteString(formRow(f.Focus == row.field, row.label, value))
	}

	submit := "[ Create ]"
	if snap.ContentsAreValid() {
		submit = styles.ok.Render(submit)
	}
	b.WriteString(formRow(f.Focus == FieldSubmit, "", submit))

	if snap.ErrorMessage != "" {
		b.WriteString("\n" + styles.err.Render(snap.ErrorMessage) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formRow(focused bool, label, value string) string {
	cursor := "  "
	if focused {
		cursor = styles.focus.Render("> ")
	}
	if label == "" {
		return cursor + value + "\n"
	}
	return fmt.Sprintf("%s%-26s %s\n", cursor, label+":", value)
}

// renderError draws the blocking error modal.
func renderError(err error) string {
	body := styles.err.Render("Error") + "\n\n" + err.Error() + "\n\n" + styles.help.Render("enter/esc to dismiss")
	return styles.modal.Render(body)
}

// renderConsent draws the product counsel notice.
func renderConsent() string {
	lines := []string{styles.focus.Render("Before you continue"), ""}
	lines = append(lines, auth.ConsentNotice...)
	lines = append(lines, "", styles.help.Render("enter to acknowledge"))
	body := strings.Join(lines, "\n")
	return consentStyle().Render(body)
}

// renderSnackbar draws a transient status line.
func renderSnackbar(msg string) string {
	return styles.snack.Render(msg)
}
