package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/circle/internal/models"
)

type cohortsLoadedMsg struct{ cohorts []models.Cohort }

type cohortDetailMsg struct{ detail *models.CohortDetail }

type cohortCreatedMsg struct{ cohort *models.Cohort }

type enrolledMsg struct{ participant *models.Participant }

type participantUpdatedMsg struct{ participant *models.Participant }

type directoryLoadedMsg struct{ resp *models.DirectoryResponse }

type scheduleLoadedMsg struct {
	cohortID string
	sessions []models.Session
}

type scheduleSavedMsg struct{ saved int }

type logsLoadedMsg struct{ logs []models.SessionLog }

type logSubmittedMsg struct{ log *models.SessionLog }

type reportLoadedMsg struct{ report *models.CohortReport }

type summaryMsg struct{ resp *models.NarrativeResponse }

type previewMsg struct{ overview *models.ParticipantOverview }

func newTextInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "❯ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	ti.Width = width
	return ti
}

// Cohort management

type cohortMode int

const (
	cohortBrowse cohortMode = iota
	cohortNew
	cohortEnroll
)

type cohortState struct {
	list   []models.Cohort
	idx    int
	detail *models.CohortDetail
	pidx   int
	mode   cohortMode
	name   textinput.Model
	email  textinput.Model
	field  int
}

func newCohortState() cohortState {
	return cohortState{
		name:  newTextInput("Name", 40),
		email: newTextInput("Email", 40),
	}
}

func (c *cohortState) selected() *models.Cohort {
	if c.idx < 0 || c.idx >= len(c.list) {
		return nil
	}
	return &c.list[c.idx]
}

func (c *cohortState) blur() {
	c.mode = cohortBrowse
	c.name.Blur()
	c.email.Blur()
}

func (c *cohortState) begin(mode cohortMode) tea.Cmd {
	c.mode = mode
	c.field = 0
	c.name.Reset()
	c.email.Reset()
	c.email.Blur()
	if mode == cohortNew {
		c.name.Placeholder = "Cohort name"
	} else {
		c.name.Placeholder = "Full name"
	}
	return c.name.Focus()
}

func (c *cohortState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if c.field == 0 {
		c.name, cmd = c.name.Update(msg)
	} else {
		c.email, cmd = c.email.Update(msg)
	}
	return cmd
}

// Directory

var directoryFilters = []string{models.StatusAll, string(models.StatusActive), string(models.StatusCompleted), string(models.StatusWithdrawn)}

type directoryState struct {
	search    textinput.Model
	filterIdx int
	table     table.Model
	resp      *models.DirectoryResponse
}

func newDirectoryState() directoryState {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 22},
			{Title: "Email", Width: 32},
			{Title: "Cohort", Width: 20},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(ColorBorder).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(ColorFgPrimary).Background(ColorBgHighlight).Bold(true)
	t.SetStyles(s)
	return directoryState{search: newTextInput("Search...", 40), table: t}
}

func (d directoryState) query() models.DirectoryQuery {
	return models.DirectoryQuery{
		Search: strings.TrimSpace(d.search.Value()),
		Status: directoryFilters[d.filterIdx],
	}
}

// Scheduling

type scheduleState struct {
	cohortIdx int
	sessions  []models.Session
	// inputs holds date-time then link for each week.
	inputs [models.ProgramWeeks * 2]textinput.Model
	field  int
}

func newScheduleState() scheduleState {
	var s scheduleState
	for w := 0; w < models.ProgramWeeks; w++ {
		s.inputs[2*w] = newTextInput("2006-01-02T15:04", 18)
		s.inputs[2*w+1] = newTextInput("Meeting link...", 36)
	}
	return s
}

func (s *scheduleState) fill(sessions []models.Session) {
	s.sessions = sessions
	for i := range s.inputs {
		s.inputs[i].Reset()
	}
	for _, sess := range sessions {
		if models.ValidWeek(sess.WeekNumber) {
			s.inputs[2*(sess.WeekNumber-1)].SetValue(sess.DateTime)
			s.inputs[2*(sess.WeekNumber-1)+1].SetValue(sess.ZoomLink)
		}
	}
}

func (s *scheduleState) focus(field int) tea.Cmd {
	s.blur()
	s.field = field
	return s.inputs[field].Focus()
}

func (s *scheduleState) blur() {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
}

// Session logs

var logFieldLabels = [4]string{"Dynamics", "Significant Moments", "Challenges", "Self Reflection"}

type logState struct {
	cohortIdx int
	week      int
	fields    [4]textarea.Model
	field     int
	logs      []models.SessionLog
}

func newLogState() logState {
	s := logState{week: 1}
	s.fields[0] = newTextArea("Dynamics & Significant moments...", 4)
	s.fields[1] = newTextArea("Moments that stood out...", 2)
	s.fields[2] = newTextArea("What was hard...", 2)
	s.fields[3] = newTextArea("Your own reflection...", 2)
	return s
}

func (s *logState) focus(field int) tea.Cmd {
	s.blur()
	s.field = field
	return s.fields[field].Focus()
}

func (s *logState) blur() {
	for i := range s.fields {
		s.fields[i].Blur()
	}
}

func (s *logState) clear() {
	for i := range s.fields {
		s.fields[i].Reset()
	}
}

// Reporting

type reportState struct {
	scopeIdx  int
	report    *models.CohortReport
	narrative *models.NarrativeResponse
}

// scopes lists "all" followed by every cohort id.
func (m Model) scopes() []string {
	out := []string{models.ScopeAll}
	for _, c := range m.cohorts.list {
		out = append(out, c.ID)
	}
	return out
}

func (m Model) cohortAt(idx int) *models.Cohort {
	if idx < 0 || idx >= len(m.cohorts.list) {
		return nil
	}
	return &m.cohorts.list[idx]
}

func (m Model) cohortName(id string) string {
	for _, c := range m.cohorts.list {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// Commands

func (m Model) loadCohortsCmd() tea.Cmd {
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		list, err := b.ListCohorts(ctx)
		if err != nil {
			return errMsg{err}
		}
		return cohortsLoadedMsg{list}
	})
}

func (m Model) loadCohortDetailCmd() tea.Cmd {
	c := m.cohorts.selected()
	if c == nil {
		return nil
	}
	id := c.ID
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		d, err := b.Cohort(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return cohortDetailMsg{d}
	})
}

func (m Model) submitCohortFormCmd() tea.Cmd {
	name := strings.TrimSpace(m.cohorts.name.Value())
	email := strings.TrimSpace(m.cohorts.email.Value())
	if m.cohorts.mode == cohortNew {
		return m.call(func(ctx context.Context, b Backend) tea.Msg {
			c, err := b.CreateCohort(ctx, name)
			if err != nil {
				return errMsg{err}
			}
			return cohortCreatedMsg{c}
		})
	}
	c := m.cohorts.selected()
	if c == nil {
		return nil
	}
	cohortID := c.ID
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		p, err := b.Enroll(ctx, cohortID, models.EnrollRequest{Name: name, Email: email})
		if err != nil {
			return errMsg{err}
		}
		return enrolledMsg{p}
	})
}

// nextStatus cycles Active, Completed, Withdrawn.
func nextStatus(s models.ParticipantStatus) models.ParticipantStatus {
	switch s {
	case models.StatusActive:
		return models.StatusCompleted
	case models.StatusCompleted:
		return models.StatusWithdrawn
	default:
		return models.StatusActive
	}
}

func (m Model) cycleStatusCmd() tea.Cmd {
	d := m.cohorts.detail
	if d == nil || m.cohorts.pidx >= len(d.Participants) {
		return nil
	}
	p := d.Participants[m.cohorts.pidx]
	next := nextStatus(p.Status)
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		up, err := b.SetParticipantStatus(ctx, p.ID, next)
		if err != nil {
			return errMsg{err}
		}
		return participantUpdatedMsg{up}
	})
}

func (m Model) loadDirectoryCmd() tea.Cmd {
	q := m.dir.query()
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		resp, err := b.Directory(ctx, q)
		if err != nil {
			return errMsg{err}
		}
		return directoryLoadedMsg{resp}
	})
}

func (m Model) loadScheduleCmd() tea.Cmd {
	c := m.cohortAt(m.sched.cohortIdx)
	if c == nil {
		return nil
	}
	id := c.ID
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		sessions, err := b.Schedule(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return scheduleLoadedMsg{cohortID: id, sessions: sessions}
	})
}

// saveScheduleCmd saves every week whose inputs differ from the loaded rows.
func (m Model) saveScheduleCmd() tea.Cmd {
	c := m.cohortAt(m.sched.cohortIdx)
	if c == nil {
		return nil
	}
	id := c.ID
	loaded := map[int]models.Session{}
	for _, s := range m.sched.sessions {
		loaded[s.WeekNumber] = s
	}
	var reqs []models.ScheduleRequest
	var weeks []int
	for w := 1; w <= models.ProgramWeeks; w++ {
		req := models.ScheduleRequest{
			DateTime: strings.TrimSpace(m.sched.inputs[2*(w-1)].Value()),
			ZoomLink: strings.TrimSpace(m.sched.inputs[2*(w-1)+1].Value()),
		}
		if prev := loaded[w]; prev.DateTime == req.DateTime && prev.ZoomLink == req.ZoomLink {
			continue
		}
		reqs = append(reqs, req)
		weeks = append(weeks, w)
	}
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		for i, req := range reqs {
			if _, err := b.ScheduleSession(ctx, id, weeks[i], req); err != nil {
				return errMsg{fmt.Errorf("week %d: %w", weeks[i], err)}
			}
		}
		return scheduleSavedMsg{saved: len(reqs)}
	})
}

func (m Model) loadLogsCmd() tea.Cmd {
	c := m.cohortAt(m.logs.cohortIdx)
	if c == nil {
		return nil
	}
	id, week := c.ID, m.logs.week
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		logs, err := b.Logs(ctx, id, week)
		if err != nil {
			return errMsg{err}
		}
		return logsLoadedMsg{logs}
	})
}

func (m Model) submitLogCmd() tea.Cmd {
	c := m.cohortAt(m.logs.cohortIdx)
	if c == nil {
		return nil
	}
	req := models.SubmitLogRequest{
		CohortID:           c.ID,
		WeekNumber:         m.logs.week,
		Dynamics:           strings.TrimSpace(m.logs.fields[0].Value()),
		SignificantMoments: strings.TrimSpace(m.logs.fields[1].Value()),
		Challenges:         strings.TrimSpace(m.logs.fields[2].Value()),
		SelfReflection:     strings.TrimSpace(m.logs.fields[3].Value()),
	}
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		l, err := b.SubmitLog(ctx, req)
		if err != nil {
			return errMsg{err}
		}
		return logSubmittedMsg{l}
	})
}

func (m Model) loadReportCmd() tea.Cmd {
	scopes := m.scopes()
	scope := scopes[m.report.scopeIdx%len(scopes)]
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		r, err := b.Report(ctx, scope)
		if err != nil {
			return errMsg{err}
		}
		return reportLoadedMsg{r}
	})
}

func (m Model) generateSummaryCmd() tea.Cmd {
	scopes := m.scopes()
	scope := scopes[m.report.scopeIdx%len(scopes)]
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		resp, err := b.GrantSummary(ctx, scope, nil)
		if err != nil {
			return errMsg{err}
		}
		return summaryMsg{resp}
	})
}

// loadPreviewCmd fetches the participant overview as a participant would
// see it.
func (m Model) loadPreviewCmd() tea.Cmd {
	dial := m.dial
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ov, err := dial(models.RoleParticipant).Overview(ctx)
		if err != nil {
			return errMsg{err}
		}
		return previewMsg{ov.Participant}
	}
}

// afterCohortsCmd loads what the current tab needs once cohorts are known.
func (m Model) afterCohortsCmd() tea.Cmd {
	switch m.tab {
	case TabCohorts:
		return m.loadCohortDetailCmd()
	case TabSchedule:
		return m.loadScheduleCmd()
	case TabLogs:
		return m.loadLogsCmd()
	case TabReports:
		return m.loadReportCmd()
	}
	return nil
}

func clampIdx(idx, n int) int {
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func (m Model) updateFacilitator(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case cohortsLoadedMsg:
		m.cohorts.list = msg.cohorts
		m.cohorts.idx = clampIdx(m.cohorts.idx, len(msg.cohorts))
		m.sched.cohortIdx = clampIdx(m.sched.cohortIdx, len(msg.cohorts))
		m.logs.cohortIdx = clampIdx(m.logs.cohortIdx, len(msg.cohorts))
		m.report.scopeIdx = clampIdx(m.report.scopeIdx, len(msg.cohorts)+1)
		m.refreshDirectoryRows()
		return m, m.afterCohortsCmd(), true

	case cohortDetailMsg:
		m.cohorts.detail = msg.detail
		m.cohorts.pidx = clampIdx(m.cohorts.pidx, len(msg.detail.Participants))
		return m, nil, true

	case cohortCreatedMsg:
		m.blurAll()
		m.status = "Cohort " + msg.cohort.Name + " created"
		m.err = nil
		m.cohorts.list = append(m.cohorts.list, *msg.cohort)
		m.cohorts.idx = len(m.cohorts.list) - 1
		return m, m.loadCohortDetailCmd(), true

	case enrolledMsg:
		m.blurAll()
		m.status = msg.participant.Name + " enrolled"
		m.err = nil
		return m, m.loadCohortDetailCmd(), true

	case participantUpdatedMsg:
		m.status = fmt.Sprintf("%s is now %s", msg.participant.Name, msg.participant.Status)
		m.err = nil
		return m, m.loadCohortDetailCmd(), true

	case directoryLoadedMsg:
		m.dir.resp = msg.resp
		m.refreshDirectoryRows()
		return m, nil, true

	case scheduleLoadedMsg:
		if c := m.cohortAt(m.sched.cohortIdx); c != nil && c.ID == msg.cohortID {
			m.sched.fill(msg.sessions)
		}
		return m, nil, true

	case scheduleSavedMsg:
		m.blurAll()
		m.err = nil
		m.status = fmt.Sprintf("%d gatherings scheduled", msg.saved)
		return m, m.loadScheduleCmd(), true

	case logsLoadedMsg:
		m.logs.logs = msg.logs
		return m, nil, true

	case logSubmittedMsg:
		m.blurAll()
		m.logs.clear()
		m.err = nil
		m.status = fmt.Sprintf("Week %d log committed", msg.log.WeekNumber)
		return m, m.loadLogsCmd(), true

	case reportLoadedMsg:
		m.report.report = msg.report
		return m, nil, true

	case summaryMsg:
		m.busy = false
		m.report.narrative = msg.resp
		if msg.resp.Fallback {
			m.status = ""
		} else {
			m.status = "Narrative generated by " + msg.resp.Provider
		}
		return m, nil, true

	case previewMsg:
		m.preview = msg.overview
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) refreshDirectoryRows() {
	if m.dir.resp == nil {
		return
	}
	rows := make([]table.Row, 0, len(m.dir.resp.Participants))
	for _, p := range m.dir.resp.Participants {
		rows = append(rows, table.Row{p.Name, p.Email, m.cohortName(p.CohortID), string(p.Status)})
	}
	m.dir.table.SetRows(rows)
}

func (m Model) handleFacilitatorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabCohorts:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cohorts.pidx > 0 {
				m.cohorts.pidx--
			}
		case key.Matches(msg, m.keys.Down):
			if d := m.cohorts.detail; d != nil && m.cohorts.pidx < len(d.Participants)-1 {
				m.cohorts.pidx++
			}
		case key.Matches(msg, m.keys.Left):
			if m.cohorts.idx > 0 {
				m.cohorts.idx--
				m.cohorts.pidx = 0
				return m, m.loadCohortDetailCmd()
			}
		case key.Matches(msg, m.keys.Right):
			if m.cohorts.idx < len(m.cohorts.list)-1 {
				m.cohorts.idx++
				m.cohorts.pidx = 0
				return m, m.loadCohortDetailCmd()
			}
		case key.Matches(msg, m.keys.New):
			m.focused = true
			cmd := m.cohorts.begin(cohortNew)
			return m, cmd
		case key.Matches(msg, m.keys.Enroll):
			if m.cohorts.selected() == nil {
				return m, nil
			}
			m.focused = true
			cmd := m.cohorts.begin(cohortEnroll)
			return m, cmd
		case key.Matches(msg, m.keys.Status):
			return m, m.cycleStatusCmd()
		}

	case TabDirectory:
		switch {
		case key.Matches(msg, m.keys.Filter):
			m.dir.filterIdx = (m.dir.filterIdx + 1) % len(directoryFilters)
			return m, m.loadDirectoryCmd()
		case key.Matches(msg, m.keys.Focus):
			m.focused = true
			cmd := m.dir.search.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Up, m.keys.Down):
			var cmd tea.Cmd
			m.dir.table, cmd = m.dir.table.Update(msg)
			return m, cmd
		}

	case TabSchedule:
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.sched.cohortIdx > 0 {
				m.sched.cohortIdx--
				return m, m.loadScheduleCmd()
			}
		case key.Matches(msg, m.keys.Right):
			if m.sched.cohortIdx < len(m.cohorts.list)-1 {
				m.sched.cohortIdx++
				return m, m.loadScheduleCmd()
			}
		case key.Matches(msg, m.keys.Focus, m.keys.Enter):
			m.focused = true
			cmd := m.sched.focus(m.sched.field)
			return m, cmd
		case key.Matches(msg, m.keys.Submit):
			return m, m.saveScheduleCmd()
		}

	case TabLogs:
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.logs.cohortIdx > 0 {
				m.logs.cohortIdx--
				return m, m.loadLogsCmd()
			}
		case key.Matches(msg, m.keys.Right):
			if m.logs.cohortIdx < len(m.cohorts.list)-1 {
				m.logs.cohortIdx++
				return m, m.loadLogsCmd()
			}
		case key.Matches(msg, m.keys.Up):
			if m.logs.week > 1 {
				m.logs.week--
				return m, m.loadLogsCmd()
			}
		case key.Matches(msg, m.keys.Down):
			if m.logs.week < models.ProgramWeeks {
				m.logs.week++
				return m, m.loadLogsCmd()
			}
		case key.Matches(msg, m.keys.Focus, m.keys.Enter):
			m.focused = true
			cmd := m.logs.focus(m.logs.field)
			return m, cmd
		case key.Matches(msg, m.keys.Submit):
			return m, m.submitLogCmd()
		}

	case TabReports:
		n := len(m.scopes())
		switch {
		case key.Matches(msg, m.keys.Left):
			m.report.scopeIdx = (m.report.scopeIdx + n - 1) % n
			m.report.narrative = nil
			return m, m.loadReportCmd()
		case key.Matches(msg, m.keys.Right):
			m.report.scopeIdx = (m.report.scopeIdx + 1) % n
			m.report.narrative = nil
			return m, m.loadReportCmd()
		case key.Matches(msg, m.keys.Generate):
			cmd := m.startBusy(m.generateSummaryCmd())
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) cohortFocusedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter, m.keys.Submit):
		if m.cohorts.mode == cohortEnroll && m.cohorts.field == 0 && key.Matches(msg, m.keys.Enter) {
			m.cohorts.field = 1
			m.cohorts.name.Blur()
			cmd := m.cohorts.email.Focus()
			return m, cmd
		}
		cmd := m.submitCohortFormCmd()
		return m, cmd
	case key.Matches(msg, m.keys.NextPane, m.keys.PrevTab):
		if m.cohorts.mode == cohortEnroll {
			m.cohorts.field = 1 - m.cohorts.field
			if m.cohorts.field == 0 {
				m.cohorts.email.Blur()
				cmd := m.cohorts.name.Focus()
				return m, cmd
			}
			m.cohorts.name.Blur()
			cmd := m.cohorts.email.Focus()
			return m, cmd
		}
		return m, nil
	}
	cmd := m.cohorts.update(msg)
	return m, cmd
}

func (m Model) directoryFocusedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Enter) {
		m.blurAll()
		return m, m.loadDirectoryCmd()
	}
	before := m.dir.search.Value()
	var cmd tea.Cmd
	m.dir.search, cmd = m.dir.search.Update(msg)
	if m.dir.search.Value() != before {
		return m, tea.Batch(cmd, m.loadDirectoryCmd())
	}
	return m, cmd
}

func (m Model) scheduleFocusedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.sched.inputs)
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.blurAll()
		return m, m.saveScheduleCmd()
	case key.Matches(msg, m.keys.NextPane, m.keys.Enter):
		cmd := m.sched.focus((m.sched.field + 1) % n)
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.sched.focus((m.sched.field + n - 1) % n)
		return m, cmd
	}
	i := m.sched.field
	var cmd tea.Cmd
	m.sched.inputs[i], cmd = m.sched.inputs[i].Update(msg)
	return m, cmd
}

func (m Model) logFocusedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.logs.fields)
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.blurAll()
		return m, m.submitLogCmd()
	case key.Matches(msg, m.keys.NextPane):
		cmd := m.logs.focus((m.logs.field + 1) % n)
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.logs.focus((m.logs.field + n - 1) % n)
		return m, cmd
	}
	i := m.logs.field
	var cmd tea.Cmd
	m.logs.fields[i], cmd = m.logs.fields[i].Update(msg)
	return m, cmd
}

// Views

func (m Model) facilitatorOverviewView() string {
	ov := m.fOverview
	if ov == nil {
		return DimStyle.Render("Gathering the hub...")
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Cohorts", fmt.Sprint(ov.Cohorts)), " ",
		stat("Participants", fmt.Sprint(ov.Participants)), " ",
		stat("Completion", fmt.Sprintf("%d%%", ov.CompletionPercent)), " ",
		stat("Stress Delta", fmt.Sprintf("%+.1f", ov.StressDelta)),
	)

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Facilitator Hub") + "\n\n" + stats + "\n\n")
	b.WriteString(LabelStyle.Render("OUTCOME METRICS") + "\n")
	b.WriteString(metricsTable(ov.Report) + "\n")
	b.WriteString(LabelStyle.Render("RECENT REFLECTIONS") + "\n")
	if len(ov.RecentReflections) == 0 {
		b.WriteString(DimStyle.Render("No consented reflections yet.") + "\n")
	}
	for _, q := range ov.RecentReflections {
		b.WriteString(QuoteStyle.Render("“"+q+"”") + "\n")
	}
	return b.String()
}

func metricsTable(r models.CohortReport) string {
	row := func(name string, pre, post, delta float64) string {
		return fmt.Sprintf("%-20s %5.1f → %5.1f  %s", name, pre, post, ValueStyle.Render(fmt.Sprintf("%+.1f", delta)))
	}
	return strings.Join([]string{
		row("Cultural Connection", r.PreAverages.Connection, r.PostAverages.Connection, r.Deltas.ConnectionChange),
		row("Stress", r.PreAverages.Stress, r.PostAverages.Stress, r.Deltas.StressChange),
		row("Self Efficacy", r.PreAverages.Efficacy, r.PostAverages.Efficacy, r.Deltas.EfficacyChange),
	}, "\n") + "\n" + DimStyle.Render(fmt.Sprintf("%d intakes · %d closing check-ins", r.PreSamples, r.PostSamples)) + "\n"
}

func (m Model) cohortView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Cohort Management") + "\n\n")
	if len(m.cohorts.list) == 0 {
		b.WriteString(DimStyle.Render("No cohorts yet. Press n to create one.") + "\n")
	}
	var names []string
	for i, c := range m.cohorts.list {
		if i == m.cohorts.idx {
			names = append(names, ActiveTabStyle.Render(c.Name))
		} else {
			names = append(names, TabStyle.Render(c.Name))
		}
	}
	b.WriteString(strings.Join(names, " ") + "\n\n")

	if d := m.cohorts.detail; d != nil {
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%s · %d members", d.ID, len(d.Participants))) + "\n")
		for i, p := range d.Participants {
			line := fmt.Sprintf("%-22s %-32s %s", p.Name, p.Email, statusStyle(string(p.Status)).Render(string(p.Status)))
			if i == m.cohorts.pidx {
				line = SelectedStyle.Render("▸ " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
	}

	switch m.cohorts.mode {
	case cohortNew:
		b.WriteString("\n" + LabelStyle.Render("NEW COHORT") + "\n" + m.cohorts.name.View() + "\n")
	case cohortEnroll:
		b.WriteString("\n" + LabelStyle.Render("ENROLL PARTICIPANT") + "\n" + m.cohorts.name.View() + "\n" + m.cohorts.email.View() + "\n")
	}
	b.WriteString("\n" + DimStyle.Render("←/→ cohort • ↑/↓ member • n new cohort • e enroll • s cycle status"))
	return b.String()
}

func (m Model) directoryView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Participant Directory") + "\n\n")
	b.WriteString(m.dir.search.View() + "   ")
	var filters []string
	for i, f := range directoryFilters {
		if i == m.dir.filterIdx {
			filters = append(filters, ActiveTabStyle.Render(f))
		} else {
			filters = append(filters, TabStyle.Render(f))
		}
	}
	b.WriteString(strings.Join(filters, "") + "\n\n")
	b.WriteString(m.dir.table.View() + "\n")
	if m.dir.resp != nil {
		b.WriteString(DimStyle.Render(fmt.Sprintf("%d participants", m.dir.resp.Total)) + "\n")
	}
	b.WriteString(DimStyle.Render("/ search • f status filter • ↑/↓ browse"))
	return b.String()
}

func (m Model) scheduleView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Schedule Circle Gatherings") + "\n\n")
	c := m.cohortAt(m.sched.cohortIdx)
	if c == nil {
		return b.String() + DimStyle.Render("Create a cohort first.")
	}
	b.WriteString(LabelStyle.Render("SELECT COHORT ") + ValueStyle.Render("◂ "+c.Name+" ▸") + "\n\n")
	for w := 1; w <= models.ProgramWeeks; w++ {
		topic, _ := models.TopicForWeek(w)
		b.WriteString(ValueStyle.Render(topic) + "\n")
		b.WriteString("  " + LabelStyle.Render("Date & Time ") + m.sched.inputs[2*(w-1)].View() + "\n")
		b.WriteString("  " + LabelStyle.Render("Zoom Link   ") + m.sched.inputs[2*(w-1)+1].View() + "\n")
	}
	b.WriteString("\n" + DimStyle.Render("←/→ cohort • i edit • tab next field • ctrl+s save schedule"))
	return b.String()
}

func (m Model) logView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Facilitator Session Log") + "\n\n")
	c := m.cohortAt(m.logs.cohortIdx)
	if c == nil {
		return b.String() + DimStyle.Render("Create a cohort first.")
	}
	topic, _ := models.TopicForWeek(m.logs.week)
	b.WriteString(LabelStyle.Render("COHORT ") + ValueStyle.Render("◂ "+c.Name+" ▸") + "   ")
	b.WriteString(LabelStyle.Render("WEEK ") + ValueStyle.Render(topic) + "\n\n")
	for i, label := range logFieldLabels {
		b.WriteString(LabelStyle.Render(label) + "\n" + m.logs.fields[i].View() + "\n")
	}
	if len(m.logs.logs) > 0 {
		b.WriteString("\n" + LabelStyle.Render(fmt.Sprintf("%d EARLIER LOGS", len(m.logs.logs))) + "\n")
		for _, l := range m.logs.logs {
			b.WriteString(NarrativeStyle.Render(fmt.Sprintf("#%d %s", l.Sequence, truncate(l.Dynamics, 80))) + "\n")
		}
	}
	b.WriteString("\n" + DimStyle.Render("←/→ cohort • ↑/↓ week • i write • tab next field • ctrl+s commit log"))
	return b.String()
}

func (m Model) reportView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("AI Reporting") + "\n\n")
	scopes := m.scopes()
	scope := scopes[m.report.scopeIdx%len(scopes)]
	label := "All cohorts"
	if scope != models.ScopeAll {
		label = m.cohortName(scope)
	}
	b.WriteString(LabelStyle.Render("SCOPE ") + ValueStyle.Render("◂ "+label+" ▸") + "\n\n")

	if r := m.report.report; r != nil {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			stat("Participants", fmt.Sprint(r.Participants)), " ",
			stat("Sessions", fmt.Sprint(r.Sessions)), " ",
			stat("Completion", fmt.Sprintf("%d%%", r.CompletionRatePercent)),
		) + "\n\n")
		b.WriteString(metricsTable(*r) + "\n")
	}

	if n := m.report.narrative; n != nil {
		b.WriteString(LabelStyle.Render("GRANT NARRATIVE") + "\n")
		if n.Fallback {
			b.WriteString(ErrorStyle.Render(n.Text) + "\n")
		} else {
			b.WriteString(NarrativeStyle.Render(n.Text) + "\n")
		}
		for _, q := range n.Quotes {
			b.WriteString(QuoteStyle.Render("“"+q+"”") + "\n")
		}
	}
	b.WriteString("\n" + DimStyle.Render("←/→ scope • g generate narrative"))
	return b.String()
}

func (m Model) previewView() string {
	if m.preview == nil {
		return DimStyle.Render("Loading participant view...")
	}
	return WarningStyle.Render("Previewing the participant dashboard (read only)") + "\n\n" +
		participantOverviewBody(m.preview)
}

func truncate(s string, max int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max-1]) + "…"
}
