package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/circle/internal/models"
)

// ViewMode represents the current view
type ViewMode int

const (
	ViewModeLogin ViewMode = iota // Role selection
	ViewModeMain                  // Role dashboard
	ViewModeHelp                  // Help overlay
)

// Tab is one dashboard section.
type Tab int

const (
	TabOverview Tab = iota
	TabIntake
	TabWorksheets
	TabCohorts
	TabDirectory
	TabSchedule
	TabLogs
	TabReports
	TabPreview
)

var tabTitles = map[Tab]string{
	TabOverview:   "Overview",
	TabIntake:     "Intake",
	TabWorksheets: "My Worksheets",
	TabCohorts:    "Cohorts",
	TabDirectory:  "Directory",
	TabSchedule:   "Scheduling",
	TabLogs:       "Session Logs",
	TabReports:    "AI Reporting",
	TabPreview:    "Participant View",
}

const requestTimeout = 90 * time.Second

// Messages
type errMsg struct{ err error }

type identifiedMsg struct {
	user    *models.User
	backend Backend
}

type overviewMsg struct{ overview *models.Overview }

type statusMsg string

var loginOptions = []struct {
	role  models.Role
	name  string
	about string
}{
	{models.RoleParticipant, "Participant Portal", "intake, weekly worksheets and your circle"},
	{models.RoleFacilitator, "Facilitator Hub", "cohorts, scheduling, session logs and reporting"},
}

// Model is the root Bubble Tea model
type Model struct {
	width  int
	height int

	viewMode ViewMode
	loginIdx int

	dial    Dialer
	backend Backend
	user    *models.User
	role    models.Role

	tab     Tab
	focused bool

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	busy    bool
	status  string
	err     error
	logger  *slog.Logger

	// Participant
	pOverview *models.ParticipantOverview
	onboarded bool
	intake    intakeForm
	sheets    worksheetState

	// Facilitator
	fOverview *models.FacilitatorOverview
	cohorts   cohortState
	dir       directoryState
	sched     scheduleState
	logs      logState
	report    reportState
	preview   *models.ParticipantOverview
}

// NewRootModel creates a new root model. A valid role signs in immediately;
// otherwise the login screen is shown.
func NewRootModel(dial Dialer, role models.Role, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorOrange)

	m := Model{
		viewMode: ViewModeLogin,
		dial:     dial,
		role:     role,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		logger:   logger,
	}
	m.resetForms()
	if role == models.RoleFacilitator {
		m.loginIdx = 1
	}
	return m
}

func (m *Model) resetForms() {
	m.pOverview, m.fOverview, m.preview = nil, nil, nil
	m.onboarded = false
	m.intake = newIntakeForm()
	m.sheets = newWorksheetState()
	m.cohorts = newCohortState()
	m.dir = newDirectoryState()
	m.sched = newScheduleState()
	m.logs = newLogState()
	m.report = reportState{}
	m.focused = false
	m.busy = false
	m.err = nil
	m.status = ""
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if m.role.IsValid() {
		return m.identifyCmd(m.role)
	}
	return nil
}

// call runs fn against the current backend in a command.
func (m Model) call(fn func(ctx context.Context, b Backend) tea.Msg) tea.Cmd {
	b := m.backend
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return fn(ctx, b)
	}
}

// identifyCmd signs in as role with a freshly dialed backend.
func (m Model) identifyCmd(role models.Role) tea.Cmd {
	dial := m.dial
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		b := dial(role)
		u, err := b.Identify(ctx)
		if err != nil {
			return errMsg{err}
		}
		return identifiedMsg{user: u, backend: b}
	}
}

func (m Model) loadOverviewCmd() tea.Cmd {
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		ov, err := b.Overview(ctx)
		if err != nil {
			return errMsg{err}
		}
		return overviewMsg{ov}
	})
}

// tabs lists the sections available to the signed-in role.
func (m Model) tabs() []Tab {
	if m.role == models.RoleFacilitator {
		return []Tab{TabOverview, TabCohorts, TabDirectory, TabSchedule, TabLogs, TabReports, TabPreview}
	}
	tabs := []Tab{TabOverview}
	if !m.onboarded {
		tabs = append(tabs, TabIntake)
	}
	return append(tabs, TabWorksheets)
}

func (m *Model) moveTab(delta int) {
	tabs := m.tabs()
	cur := 0
	for i, t := range tabs {
		if t == m.tab {
			cur = i
		}
	}
	m.tab = tabs[(cur+delta+len(tabs))%len(tabs)]
}

// enterTabCmd loads whatever the current tab shows.
func (m Model) enterTabCmd() tea.Cmd {
	switch m.tab {
	case TabOverview:
		return m.loadOverviewCmd()
	case TabWorksheets:
		return m.loadWorksheetsCmd()
	case TabCohorts, TabSchedule, TabLogs, TabReports:
		return m.loadCohortsCmd()
	case TabDirectory:
		return tea.Batch(m.loadCohortsCmd(), m.loadDirectoryCmd())
	case TabPreview:
		return m.loadPreviewCmd()
	}
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case errMsg:
		m.busy = false
		m.err = msg.err
		m.status = ""
		m.logger.Warn("request failed", "tab", tabTitles[m.tab], "error", msg.err)
		return m, nil

	case statusMsg:
		m.err = nil
		m.status = string(msg)
		return m, nil

	case identifiedMsg:
		m.resetForms()
		m.backend = msg.backend
		m.user = msg.user
		m.role = msg.user.Role
		m.viewMode = ViewModeMain
		m.tab = TabOverview
		m.logger.Info("signed in", "role", m.role, "user_id", m.user.ID)
		return m, m.loadOverviewCmd()

	case overviewMsg:
		m.err = nil
		if msg.overview.Participant != nil {
			m.pOverview = msg.overview.Participant
			m.onboarded = msg.overview.Participant.Onboarding.Complete
		}
		if msg.overview.Facilitator != nil {
			m.fOverview = msg.overview.Facilitator
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if next, cmd, ok := m.updateParticipant(msg); ok {
		return next, cmd
	}
	if next, cmd, ok := m.updateFacilitator(msg); ok {
		return next, cmd
	}
	return m.updateFocused(msg)
}

func (m *Model) resize() {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	m.intake.goal.SetWidth(w)
	m.intake.meaning.SetWidth(w)
	m.sheets.editor.SetWidth(w)
	for i := range m.logs.fields {
		m.logs.fields[i].SetWidth(w)
	}
	m.dir.table.SetWidth(w)
	h := m.height - 16
	if h < 3 {
		h = 3
	}
	m.dir.table.SetHeight(h)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewModeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.viewMode = ViewModeMain
		}
		return m, nil
	case ViewModeLogin:
		return m.handleLoginKey(msg)
	}

	if m.focused {
		if key.Matches(msg, m.keys.Escape) {
			m.blurAll()
			return m, nil
		}
		return m.handleFocusedKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.viewMode = ViewModeHelp
		return m, nil
	case key.Matches(msg, m.keys.SwitchRole):
		m.status = "switching to " + string(m.role.Other())
		return m, m.identifyCmd(m.role.Other())
	case key.Matches(msg, m.keys.SignOut):
		m.resetForms()
		m.backend, m.user = nil, nil
		m.viewMode = ViewModeLogin
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.moveTab(1)
		m.err = nil
		return m, m.enterTabCmd()
	case key.Matches(msg, m.keys.PrevTab):
		m.moveTab(-1)
		m.err = nil
		return m, m.enterTabCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.enterTabCmd()
	}

	switch m.tab {
	case TabIntake, TabWorksheets:
		return m.handleParticipantKey(msg)
	case TabCohorts, TabDirectory, TabSchedule, TabLogs, TabReports:
		return m.handleFacilitatorKey(msg)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.loginIdx > 0 {
			m.loginIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.loginIdx < len(loginOptions)-1 {
			m.loginIdx++
		}
	case key.Matches(msg, m.keys.Enter):
		return m, m.identifyCmd(loginOptions[m.loginIdx].role)
	}
	return m, nil
}

// handleFocusedKey routes keys to the tab's active input.
func (m Model) handleFocusedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabIntake:
		return m.intakeKey(msg)
	case TabWorksheets:
		return m.worksheetFocusedKey(msg)
	case TabCohorts:
		return m.cohortFocusedKey(msg)
	case TabDirectory:
		return m.directoryFocusedKey(msg)
	case TabSchedule:
		return m.scheduleFocusedKey(msg)
	case TabLogs:
		return m.logFocusedKey(msg)
	}
	return m, nil
}

// updateFocused forwards cursor blinks and similar to the active input.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.tab {
	case TabIntake:
		if ta := m.intake.active(); ta != nil {
			*ta, cmd = ta.Update(msg)
		}
	case TabWorksheets:
		m.sheets.editor, cmd = m.sheets.editor.Update(msg)
	case TabCohorts:
		cmd = m.cohorts.update(msg)
	case TabDirectory:
		m.dir.search, cmd = m.dir.search.Update(msg)
	case TabSchedule:
		i := m.sched.field
		m.sched.inputs[i], cmd = m.sched.inputs[i].Update(msg)
	case TabLogs:
		i := m.logs.field
		m.logs.fields[i], cmd = m.logs.fields[i].Update(msg)
	}
	return m, cmd
}

func (m *Model) blurAll() {
	m.focused = false
	m.intake.blur()
	m.sheets.editor.Blur()
	m.cohorts.blur()
	m.dir.search.Blur()
	m.sched.blur()
	m.logs.blur()
}

// startBusy shows the spinner while cmd runs.
func (m *Model) startBusy(cmd tea.Cmd) tea.Cmd {
	m.busy = true
	m.err = nil
	return tea.Batch(m.spinner.Tick, cmd)
}

// View renders the current view
func (m Model) View() string {
	switch m.viewMode {
	case ViewModeLogin:
		return m.loginView()
	case ViewModeHelp:
		return m.helpView()
	}

	var body string
	switch m.tab {
	case TabOverview:
		if m.role == models.RoleFacilitator {
			body = m.facilitatorOverviewView()
		} else {
			body = m.participantOverviewView()
		}
	case TabIntake:
		body = m.intakeView()
	case TabWorksheets:
		body = m.worksheetView()
	case TabCohorts:
		body = m.cohortView()
	case TabDirectory:
		body = m.directoryView()
	case TabSchedule:
		body = m.scheduleView()
	case TabLogs:
		body = m.logView()
	case TabReports:
		body = m.reportView()
	case TabPreview:
		body = m.previewView()
	}

	panel := PanelStyle
	if m.focused {
		panel = FocusedPanelStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		panel.Render(body),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := BrandStyle.Render("INDIGENOUS GENIUS")
	subtitle := SubtitleStyle.Render(" · Healing Circle Portal")
	badge := RoleBadgeStyle.Render(strings.ToUpper(string(m.role)))
	var who string
	if m.user != nil {
		who = DimStyle.Render("  " + m.user.FullName + " · " + m.user.Affiliation)
	}
	hint := DimStyle.Render("  R switch to " + string(m.role.Other()) + " · ctrl+o sign out")
	return lipgloss.NewStyle().PaddingLeft(1).Render(title+subtitle+"  "+badge+who+hint) + "\n"
}

func (m Model) renderTabs() string {
	var parts []string
	for _, t := range m.tabs() {
		if t == m.tab {
			parts = append(parts, ActiveTabStyle.Render(tabTitles[t]))
		} else {
			parts = append(parts, TabStyle.Render(tabTitles[t]))
		}
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(parts, " "))
}

func (m Model) renderStatusBar() string {
	var status string
	switch {
	case m.busy:
		status = m.spinner.View() + WarningStyle.Render(" Consulting the circle...")
	case m.err != nil:
		status = ErrorStyle.Render("✗ " + m.err.Error())
	case m.status != "":
		status = SuccessStyle.Render("✓ " + m.status)
	default:
		status = DimStyle.Render("○ Ready")
	}
	return StatusBarStyle.Render(status) + "\n" + StatusBarStyle.Render(m.help.View(m.keys))
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(BrandStyle.Render("INDIGENOUS GENIUS") + SubtitleStyle.Render(" · Secure Portal Access"))
	b.WriteString("\n\n")
	b.WriteString(TitleStyle.Render("Welcome Home."))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("Enter your digital sanctuary to continue your journey of heritage and healing."))
	b.WriteString("\n\n")

	for i, o := range loginOptions {
		line := "  " + o.name
		style := lipgloss.NewStyle().Foreground(ColorFgPrimary).Padding(0, 1)
		if i == m.loginIdx {
			line = "▸ " + o.name
			style = SelectedStyle.Padding(0, 1)
		}
		b.WriteString(style.Render(line) + DimStyle.Render(" - "+o.about))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n" + ErrorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("↑/↓ navigate • Enter sign in • q quit"))

	box := PanelStyle.Render(b.String())
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) helpView() string {
	h := m.help
	h.ShowAll = true
	content := HelpTitleStyle.Render("Keyboard Shortcuts") + "\n\n" + h.View(m.keys) +
		"\n\n" + DimStyle.Render("Press ? or Esc to close")
	box := HelpStyle.Render(content)
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// stat renders a labelled figure for overview grids.
func stat(label, value string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 2).
		Render(LabelStyle.Render(strings.ToUpper(label)) + "\n" + StatValueStyle.Render(value))
}
