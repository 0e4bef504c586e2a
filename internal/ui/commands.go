package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/floody/internal/actions"
	"github.com/desertthunder/floody/internal/formatter"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/store"
)

// Commands run on bubbletea's goroutines. Their failures already reach the store, so the returned
// messages only carry values the model keeps outside it.

func (m *Model) initGateway() tea.Cmd {
	return func() tea.Msg {
		return doneMsg(MsgReady, nil, m.deps.Gateway.Init(m.ctx))
	}
}

func (m *Model) signIn() tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Gateway.SignIn(m.ctx); err != nil {
			m.logger.Warn("sign-in failed", "error", err)
		}
		return nil
	}
}

func (m *Model) signOut() tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Gateway.SignOut(m.ctx); err != nil {
			m.deps.Store.ReportError(err)
		}
		return doneMsg(MsgSignedOut, nil, nil)
	}
}

func (m *Model) setRoute(r store.Route) tea.Cmd {
	if err := m.deps.Store.SetRoute(r); err != nil {
		m.logger.Error("route", "error", err)
	}
	return nil
}

func (m *Model) loadFiles() tea.Cmd {
	return func() tea.Msg {
		files, err := m.deps.Loader.LoadRecentFiles(m.ctx)
		return doneMsg(MsgFilesLoaded, files, err)
	}
}

func (m *Model) loadProfiles() tea.Cmd {
	return func() tea.Msg {
		profiles, err := m.deps.Loader.LoadProfiles(m.ctx)
		return doneMsg(MsgProfilesLoaded, profiles, err)
	}
}

func (m *Model) selectProfile(id string) tea.Cmd {
	return func() tea.Msg {
		return doneMsg(MsgChainDone, nil, m.deps.Loader.SelectProfile(m.ctx, id))
	}
}

func (m *Model) selectAccount(id string) tea.Cmd {
	return func() tea.Msg {
		return doneMsg(MsgChainDone, nil, m.deps.Loader.SelectAccount(m.ctx, id))
	}
}

func (m *Model) create() tea.Cmd {
	return func() tea.Msg {
		sheet, err := m.deps.Actions.CreateSpreadsheet(m.ctx)
		return doneMsg(MsgSheetCreated, sheet, err)
	}
}

func (m *Model) checkUserAuth() tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		resp, err := m.deps.Actions.CheckUserAuth(m.ctx, id)
		return doneMsg(MsgAuthChecked, resp, err)
	}
}

func (m *Model) share(users, groups []string) tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		return doneMsg(MsgActionDone, nil, m.deps.Actions.Share(m.ctx, id, users, groups))
	}
}

func (m *Model) exportToDcm() tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		report, err := m.deps.Actions.ExportToDcm(m.ctx, id)
		return doneMsg(MsgActionDone, report, err)
	}
}

func (m *Model) importFromDcm() tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		report, err := m.deps.Actions.ImportFromDcm(m.ctx, id)
		return doneMsg(MsgActionDone, report, err)
	}
}

func (m *Model) addRows() tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		return doneMsg(MsgActionDone, nil, m.deps.Actions.AddRows(m.ctx, id))
	}
}

func (m *Model) rename(title string) tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		sheet, err := m.deps.Actions.RenameSheet(m.ctx, id, title)
		if err != nil {
			return doneMsg(MsgActionDone, nil, err)
		}
		return doneMsg(MsgActionDone, "Renamed to "+sheet.Name, nil)
	}
}

func (m *Model) submitGtm(in actions.GtmSubmission) tea.Cmd {
	id := m.sheetID
	return func() tea.Msg {
		resp, err := m.deps.Actions.SubmitGtmRequest(m.ctx, id, in)
		return doneMsg(MsgGtmSubmitted, resp, err)
	}
}

func (m *Model) loadGtm() tea.Cmd {
	id := m.requestID
	return func() tea.Msg {
		req, err := m.deps.Actions.LoadGtmRequest(m.ctx, id)
		return doneMsg(MsgGtmLoaded, req, err)
	}
}

func (m *Model) sendGtmAction(action models.GtmAction) tea.Cmd {
	id, comment := m.requestID, m.comment.Value()
	return func() tea.Msg {
		res, err := m.deps.Actions.SendGtmAction(m.ctx, id, action, comment)
		return doneMsg(MsgGtmResult, res, err)
	}
}

func (m *Model) renderGtm() string {
	if m.gtmRequest == nil {
		return m.spinner.View() + " Loading GTM request " + m.requestID + "..."
	}

	var b strings.Builder
	if out, err := formatter.GtmRequest(m.gtmRequest, formatter.FormatText); err == nil {
		b.Write(out)
	}
	if m.gtmResults != nil {
		b.WriteString("\n")
		b.Write(formatter.GtmResults(m.gtmResults))
	}
	if m.gtmRequest.Pending() {
		b.WriteString("\n" + m.comment.View() + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
