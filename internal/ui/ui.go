package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/floody/internal/actions"
	"github.com/desertthunder/floody/internal/auth"
	"github.com/desertthunder/floody/internal/loader"
	"github.com/desertthunder/floody/internal/models"
	"github.com/desertthunder/floody/internal/shared"
	"github.com/desertthunder/floody/internal/store"
)

// SnackbarTimeout is how long a snackbar message stays on screen.
const SnackbarTimeout = 17 * time.Second

// Page is one of the three top-level screens.
type Page int

const (
	PageMain Page = iota
	PageManage
	PageGtm
)

// Deps are the collaborators the TUI drives.
type Deps struct {
	Store   *store.Store
	Gateway *auth.Gateway
	Loader  *loader.Loader
	Actions *actions.Handlers
	Consent *auth.Consent
	Logger  *log.Logger
	Now     func() time.Time
}

// Options selects the starting page.
type Options struct {
	Page      Page
	SheetID   string
	RequestID string
}

type prompt int

const (
	promptNone prompt = iota
	promptShare
	promptGtm
	promptRename
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	deps      Deps
	logger    *log.Logger
	page      Page
	sheetID   string
	requestID string

	events      *mailbox
	unsubscribe func()

	snap    store.Snapshot
	frame   Frame
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
	height  int

	errModal error
	consent  bool
	snackbar string
	snackSeq int

	prompt     prompt
	inputs     []textinput.Model
	inputFocus int
	report     string
	submitted  *models.GtmExportResponse

	gtmRequest *models.GtmExport
	gtmResults *models.GtmTagOperationResults
	comment    textarea.Model
	commenting bool
}

// NewModel creates a TUI model subscribed to the store. Every store event is delivered to Update as a [Msg].
func NewModel(ctx context.Context, deps Deps, opts Options) *Model {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.focus

	comment := textarea.New()
	comment.Placeholder = "Comment for the requester (required to reject)"
	comment.SetHeight(3)

	m := &Model{
		ctx:       ctx,
		deps:      deps,
		logger:    shared.WithLogger(deps.Logger, "component", "ui"),
		page:      opts.Page,
		sheetID:   opts.SheetID,
		requestID: opts.RequestID,
		events:    newMailbox(),
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
		comment:   comment,
	}
	m.snap = deps.Store.Snapshot()
	m.unsubscribe = deps.Store.Subscribe(m.forward)
	return m
}

// forward runs on whichever goroutine mutated the store and must not block.
func (m *Model) forward(ev store.Event) { m.events.put(ev) }

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := m.events.next(m.ctx)
		if !ok {
			return nil
		}
		return storeEventMsg(ev)
	}
}

// Init starts the spinner, the store subscription and the auth gateway.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent(), m.initGateway())
}

// Close releases the store subscription and cancels loads in flight.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.events.close()
	if m.deps.Loader != nil {
		m.deps.Loader.Cancel()
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.comment.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case Msg:
		return m, m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgStoreEvent:
		ev, _ := msg.data.(store.Event)
		m.snap = m.deps.Store.Snapshot()
		return tea.Batch(m.handleEvent(ev), m.waitForEvent())

	case MsgReady:
		if err := msg.outcome().err; err != nil {
			m.errModal = err
			return nil
		}
		m.snap = m.deps.Store.Snapshot()
		if m.snap.IsSignedIn {
			return m.loadPage()
		}

	case MsgFilesLoaded:
		if m.frame.Cursor >= len(m.snap.RecentFiles) {
			m.frame.Cursor = 0
		}

	case MsgSheetCreated:
		o := msg.outcome()
		if sheet, ok := o.value.(*models.FloodySheet); ok && o.err == nil {
			return m.openManage(sheet.ID)
		}

	case MsgActionDone:
		if report, ok := msg.outcome().value.(string); ok && report != "" {
			m.report = report
		}

	case MsgGtmSubmitted:
		if resp, ok := msg.outcome().value.(*models.GtmExportResponse); ok && resp != nil {
			m.submitted = resp
		}

	case MsgGtmLoaded:
		if req, ok := msg.outcome().value.(*models.GtmExport); ok && req != nil {
			m.gtmRequest = req
		}

	case MsgGtmResult:
		if res, ok := msg.outcome().value.(*models.GtmTagOperationResults); ok && res != nil {
			m.gtmResults = res
			m.comment.Reset()
			return m.loadGtm()
		}

	case MsgSnackbarExpired:
		if seq, _ := msg.data.(int); seq == m.snackSeq {
			m.snackbar = ""
		}
	}
	return nil
}

func (m *Model) handleEvent(ev store.Event) tea.Cmd {
	switch ev.Kind {
	case store.EventRouteChanged:
		if m.page != PageMain {
			return nil
		}
		switch ev.Route {
		case store.FileSelect:
			m.frame.Cursor = 0
			return m.loadFiles()
		case store.CreateNew:
			m.frame.Focus = FieldProfile
			return m.loadProfiles()
		}

	case store.EventError:
		m.errModal = ev.Err

	case store.EventSnackbar:
		m.snackbar = ev.Message
		m.snackSeq++
		seq := m.snackSeq
		return tea.Tick(SnackbarTimeout, func(time.Time) tea.Msg { return snackbarExpiredMsg(seq) })

	case store.EventShowConsent:
		if m.deps.Consent == nil {
			return nil
		}
		due, err := m.deps.Consent.ShowIfDue(m.deps.Now())
		if err != nil {
			m.logger.Warn("failed to record consent", "error", err)
		}
		m.consent = due

	case store.EventSignedIn:
		if m.page != PageMain {
			return m.loadPage()
		}

	case store.EventReset:
		m.page = PageMain
		m.sheetID, m.requestID = "", ""
		m.report, m.submitted = "", nil
		m.gtmRequest, m.gtmResults = nil, nil
		m.frame = Frame{}
	}
	return nil
}

func (m *Model) loadPage() tea.Cmd {
	switch m.page {
	case PageManage:
		return m.checkUserAuth()
	case PageGtm:
		return m.loadGtm()
	}
	return nil
}

func (m *Model) openManage(sheetID string) tea.Cmd {
	m.page = PageManage
	m.sheetID = sheetID
	m.report, m.submitted = "", nil
	return m.checkUserAuth()
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.errModal != nil {
		if key.Matches(msg, m.keys.enter, m.keys.back) {
			m.errModal = nil
			m.deps.Store.ClearError()
		}
		return m, nil
	}
	if m.consent {
		if key.Matches(msg, m.keys.enter, m.keys.back) {
			m.consent = false
		}
		return m, nil
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.commenting {
		return m.handleCommentKey(msg)
	}

	if key.Matches(msg, m.keys.quit) {
		return m.quit()
	}

	if !m.snap.IsSignedIn {
		if m.snap.Route == store.Homepage && key.Matches(msg, m.keys.signIn) {
			return m, m.signIn()
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.signOut) {
		return m, m.signOut()
	}

	switch m.page {
	case PageManage:
		return m.handleManageKey(msg)
	case PageGtm:
		return m.handleGtmKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m *Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.snap.Route {
	case store.FileSelect:
		switch {
		case key.Matches(msg, m.keys.up):
			if m.frame.Cursor > 0 {
				m.frame.Cursor--
			}
		case key.Matches(msg, m.keys.down):
			if m.frame.Cursor < len(m.snap.RecentFiles)-1 {
				m.frame.Cursor++
			}
		case key.Matches(msg, m.keys.enter):
			if m.frame.Cursor < len(m.snap.RecentFiles) {
				return m, m.openManage(m.snap.RecentFiles[m.frame.Cursor].ID)
			}
		case key.Matches(msg, m.keys.create):
			return m, m.setRoute(store.CreateNew)
		case key.Matches(msg, m.keys.refresh):
			return m, m.loadFiles()
		}

	case store.CreateNew:
		switch {
		case key.Matches(msg, m.keys.up):
			m.frame.Focus = (m.frame.Focus + fieldCount - 1) % fieldCount
		case key.Matches(msg, m.keys.down), key.Matches(msg, m.keys.next):
			m.frame.Focus = (m.frame.Focus + 1) % fieldCount
		case key.Matches(msg, m.keys.left):
			return m, m.cycle(-1)
		case key.Matches(msg, m.keys.right):
			return m, m.cycle(1)
		case key.Matches(msg, m.keys.enter):
			return m, m.create()
		case key.Matches(msg, m.keys.back):
			return m, m.setRoute(store.FileSelect)
		}
	}
	return m, nil
}

// cycle moves the focused create form field to its next or previous option.
func (m *Model) cycle(delta int) tea.Cmd {
	var options []models.DcmObject
	var selected string
	switch m.frame.Focus {
	case FieldProfile:
		options, selected = m.snap.Profiles, m.snap.SelectedProfile
	case FieldAccount:
		options, selected = m.snap.Accounts, m.snap.SelectedAccount
	case FieldFloodlightConfig:
		options, selected = m.snap.FloodlightConfigs, m.snap.SelectedFloodlightConfig
	default:
		return nil
	}
	if len(options) == 0 {
		return nil
	}

	i := indexOf(options, selected)
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(options) - 1
	default:
		i = (i + delta + len(options)) % len(options)
	}
	id := options[i].ID.String()

	switch m.frame.Focus {
	case FieldProfile:
		return m.selectProfile(id)
	case FieldAccount:
		return m.selectAccount(id)
	default:
		m.deps.Store.SelectFloodlightConfig(id)
		return nil
	}
}

func (m *Model) handleManageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.page = PageMain
		m.sheetID = ""
		return m, m.setRoute(store.FileSelect)
	case key.Matches(msg, m.keys.refresh):
		return m, m.checkUserAuth()
	case key.Matches(msg, m.keys.share):
		return m, m.openPrompt(promptShare)
	case key.Matches(msg, m.keys.gtm):
		return m, m.openPrompt(promptGtm)
	case key.Matches(msg, m.keys.rename):
		return m, m.openPrompt(promptRename)
	case key.Matches(msg, m.keys.export):
		return m, m.exportToDcm()
	case key.Matches(msg, m.keys.imprt):
		return m, m.importFromDcm()
	case key.Matches(msg, m.keys.rows):
		return m, m.addRows()
	case key.Matches(msg, m.keys.profile):
		m.nextProfile()
	}
	return m, nil
}

func (m *Model) nextProfile() {
	bar := m.snap.ActionBar
	if len(bar.ValidProfiles) == 0 {
		return
	}
	i := (indexOf(bar.ValidProfiles, bar.SelectedProfileID) + 1) % len(bar.ValidProfiles)
	if err := m.deps.Actions.UseProfile(bar.ValidProfiles[i].ID.String()); err != nil {
		m.logger.Warn("failed to switch profile", "error", err)
	}
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	return in
}

func (m *Model) openPrompt(p prompt) tea.Cmd {
	m.prompt = p
	m.inputFocus = 0
	switch p {
	case promptShare:
		m.inputs = []textinput.Model{
			newInput("user emails, comma separated", ""),
			newInput("group emails, comma separated", ""),
		}
	case promptGtm:
		m.inputs = []textinput.Model{
			newInput("GTM container id", ""),
			newInput("message to approvers", ""),
			newInput("approver emails, comma separated", ""),
		}
	case promptRename:
		m.inputs = []textinput.Model{newInput("new title", m.snap.ActionBar.SpreadsheetTitle)}
	}
	return m.inputs[0].Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.inputs = nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.inputs[m.inputFocus].Blur()
		m.inputFocus = (m.inputFocus + 1) % len(m.inputs)
		return m, m.inputs[m.inputFocus].Focus()
	case key.Matches(msg, m.keys.enter):
		values := make([]string, len(m.inputs))
		for i, in := range m.inputs {
			values[i] = strings.TrimSpace(in.Value())
		}
		p := m.prompt
		m.closePrompt()
		return m, m.submitPrompt(p, values)
	}

	var cmd tea.Cmd
	m.inputs[m.inputFocus], cmd = m.inputs[m.inputFocus].Update(msg)
	return m, cmd
}

func (m *Model) submitPrompt(p prompt, values []string) tea.Cmd {
	switch p {
	case promptShare:
		return m.share(shared.SplitList(values[0]), shared.SplitList(values[1]))
	case promptGtm:
		return m.submitGtm(actions.GtmSubmission{
			ContainerID: values[0],
			Message:     values[1],
			Approvers:   shared.SplitList(values[2]),
		})
	case promptRename:
		return m.rename(values[0])
	}
	return nil
}

func (m *Model) handleGtmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.comment):
		m.commenting = true
		return m, m.comment.Focus()
	case key.Matches(msg, m.keys.approve):
		return m, m.sendGtmAction(models.GtmApprove)
	case key.Matches(msg, m.keys.reject):
		return m, m.sendGtmAction(models.GtmReject)
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadGtm()
	}
	return m, nil
}

func (m *Model) handleCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) {
		m.commenting = false
		m.comment.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	return m, cmd
}

func (m *Model) headerKind() store.HeaderKind {
	switch m.page {
	case PageManage:
		return store.HeaderManage
	case PageGtm:
		return store.HeaderGtm
	default:
		return store.HeaderDefault
	}
}

// View renders the current page with any modal, snackbar and help line.
func (m *Model) View() string {
	m.frame.Spinner = m.spinner.View()

	var body string
	switch {
	case m.errModal != nil:
		body = renderHeader(m.snap, m.headerKind()) + "\n\n" + renderError(m.errModal)
	case m.consent:
		body = renderHeader(m.snap, m.headerKind()) + "\n\n" + renderConsent()
	case m.page == PageMain || !m.snap.IsSignedIn:
		body = RenderFrame(m.snap, m.headerKind(), m.frame)
	case m.page == PageManage:
		body = renderHeader(m.snap, store.HeaderManage) + "\n\n" + m.renderManage()
	default:
		body = renderHeader(m.snap, store.HeaderGtm) + "\n\n" + m.renderGtm()
	}

	parts := []string{body}
	if m.snackbar != "" {
		parts = append(parts, renderSnackbar(m.snackbar))
	}
	parts = append(parts, m.help.ShortHelpView(m.helpKeys()))
	return strings.Join(parts, "\n\n")
}

func (m *Model) helpKeys() []key.Binding {
	k := m.keys
	switch {
	case m.errModal != nil, m.consent:
		return []key.Binding{k.enter}
	case m.prompt != promptNone:
		return []key.Binding{k.next, k.enter, k.back}
	case m.commenting:
		return []key.Binding{k.back}
	case !m.snap.IsSignedIn:
		return []key.Binding{k.signIn, k.quit}
	case m.page == PageManage:
		return []key.Binding{k.share, k.export, k.imprt, k.rows, k.gtm, k.rename, k.profile, k.back, k.quit}
	case m.page == PageGtm:
		return []key.Binding{k.comment, k.approve, k.reject, k.refresh, k.quit}
	case m.snap.Route == store.CreateNew:
		return []key.Binding{k.up, k.down, k.left, k.right, k.enter, k.back, k.quit}
	default:
		return []key.Binding{k.up, k.down, k.enter, k.create, k.refresh, k.signOut, k.quit}
	}
}

func (m *Model) renderManage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet: %s\n", m.sheetID)
	b.WriteString(styles.help.Render("https://docs.google.com/spreadsheets/d/"+m.sheetID) + "\n")

	if m.prompt != promptNone {
		b.WriteString("\n" + styles.focus.Render(promptTitle(m.prompt)) + "\n")
		for _, in := range m.inputs {
			b.WriteString(in.View() + "\n")
		}
	}
	if m.submitted != nil {
		b.WriteString("\n" + gtmSubmittedText(m.submitted) + "\n")
	}
	if m.report != "" {
		b.WriteString("\n" + m.report + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func promptTitle(p prompt) string {
	switch p {
	case promptShare:
		return "Share spreadsheet"
	case promptGtm:
		return "Request GTM export"
	default:
		return "Rename spreadsheet"
	}
}

func gtmSubmittedText(resp *models.GtmExportResponse) string {
	if !resp.Status.Success {
		return styles.err.Render("GTM request failed: " + resp.Status.ErrorMessage)
	}
	return styles.ok.Render("GTM request "+resp.RequestID+" sent to the approvers.") +
		"\n" + styles.help.Render("floody tui --gtm "+resp.RequestID)
}
