package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/circle/internal/models"
)

// fakeBackend records calls and returns canned data.
type fakeBackend struct {
	role models.Role

	intake      *models.IntakeRequest
	saved       map[int]models.WorksheetRequest
	scheduled   map[int]models.ScheduleRequest
	logged      []models.SubmitLogRequest
	statuses    map[string]models.ParticipantStatus
	dirQueries  []models.DirectoryQuery
	summaryErr  error
	onboarded   bool
	guidanceFor []int
}

func newFake(role models.Role) *fakeBackend {
	return &fakeBackend{
		role:      role,
		saved:     map[int]models.WorksheetRequest{},
		scheduled: map[int]models.ScheduleRequest{},
		statuses:  map[string]models.ParticipantStatus{},
		onboarded: true,
	}
}

func (f *fakeBackend) Identify(context.Context) (*models.User, error) {
	name := "Participant"
	if f.role == models.RoleFacilitator {
		name = "Facilitator"
	}
	return &models.User{ID: models.DemoUserID, Role: f.role, FullName: name, Affiliation: "Salt River"}, nil
}

func (f *fakeBackend) Overview(context.Context) (*models.Overview, error) {
	if f.role == models.RoleFacilitator {
		return &models.Overview{Role: f.role, Facilitator: &models.FacilitatorOverview{
			Cohorts: 2, Participants: 9, CompletionPercent: 22, StressDelta: -4.3,
			RecentReflections: []string{"Heritage is my anchor."},
		}}, nil
	}
	return &models.Overview{Role: f.role, Participant: &models.ParticipantOverview{
		CircleMembers: 9, SessionsHeld: 3, GlobalCompletion: 22,
		Onboarding: models.OnboardingState{Complete: f.onboarded},
	}}, nil
}

func (f *fakeBackend) Intake(context.Context) (*models.Intake, error) { return nil, nil }

func (f *fakeBackend) SubmitIntake(_ context.Context, req models.IntakeRequest) (*models.Intake, error) {
	f.intake = &req
	f.onboarded = true
	return &models.Intake{UserID: models.DemoUserID, BaselineConnection: req.BaselineConnection}, nil
}

func (f *fakeBackend) Worksheets(context.Context) ([]models.Worksheet, error) {
	return []models.Worksheet{
		{Week: 1, Topic: models.WeeklyTopics[0], Data: map[string]any{models.ReflectionKey: "my hearth"}, ConsentToQuote: true},
		{Week: 2, Topic: models.WeeklyTopics[1], Data: map[string]any{}},
	}, nil
}

func (f *fakeBackend) SaveWorksheet(_ context.Context, week int, req models.WorksheetRequest) (*models.Worksheet, error) {
	f.saved[week] = req
	return &models.Worksheet{Week: week, Data: req.Data, ConsentToQuote: req.ConsentToQuote, Anonymous: req.Anonymous}, nil
}

func (f *fakeBackend) Guidance(_ context.Context, week int, _ string) (*models.NarrativeResponse, error) {
	f.guidanceFor = append(f.guidanceFor, week)
	return &models.NarrativeResponse{Text: "Listen to the water.", Provider: "fake"}, nil
}

func (f *fakeBackend) ListCohorts(context.Context) ([]models.Cohort, error) {
	return []models.Cohort{{ID: "cohort-001", Name: "Spring Circle"}, {ID: "cohort-002", Name: "Summer Circle"}}, nil
}

func (f *fakeBackend) CreateCohort(_ context.Context, name string) (*models.Cohort, error) {
	return &models.Cohort{ID: "cohort-new", Name: name}, nil
}

func (f *fakeBackend) Cohort(_ context.Context, id string) (*models.CohortDetail, error) {
	status := models.StatusActive
	if s, ok := f.statuses["usr_1"]; ok {
		status = s
	}
	return &models.CohortDetail{
		Cohort:       models.Cohort{ID: id},
		Participants: []models.Participant{{ID: "usr_1", CohortID: id, Name: "Leona", Status: status}},
	}, nil
}

func (f *fakeBackend) Enroll(_ context.Context, cohortID string, req models.EnrollRequest) (*models.Participant, error) {
	return &models.Participant{ID: "usr_new", CohortID: cohortID, Name: req.Name, Email: req.Email, Status: models.StatusActive}, nil
}

func (f *fakeBackend) SetParticipantStatus(_ context.Context, id string, status models.ParticipantStatus) (*models.Participant, error) {
	f.statuses[id] = status
	return &models.Participant{ID: id, Name: "Leona", Status: status}, nil
}

func (f *fakeBackend) Directory(_ context.Context, q models.DirectoryQuery) (*models.DirectoryResponse, error) {
	f.dirQueries = append(f.dirQueries, q)
	return &models.DirectoryResponse{
		Participants: []models.Participant{{ID: "usr_1", CohortID: "cohort-001", Name: "Leona", Status: models.StatusActive}},
		Total:        1,
	}, nil
}

func (f *fakeBackend) Schedule(_ context.Context, cohortID string) ([]models.Session, error) {
	out := make([]models.Session, models.ProgramWeeks)
	for i := range out {
		out[i] = models.Session{CohortID: cohortID, WeekNumber: i + 1, Topic: models.WeeklyTopics[i]}
	}
	out[0].DateTime = "2024-04-02T18:00"
	return out, nil
}

func (f *fakeBackend) ScheduleSession(_ context.Context, cohortID string, week int, req models.ScheduleRequest) (*models.Session, error) {
	f.scheduled[week] = req
	return &models.Session{CohortID: cohortID, WeekNumber: week, DateTime: req.DateTime, ZoomLink: req.ZoomLink}, nil
}

func (f *fakeBackend) Logs(context.Context, string, int) ([]models.SessionLog, error) {
	return nil, nil
}

func (f *fakeBackend) SubmitLog(_ context.Context, req models.SubmitLogRequest) (*models.SessionLog, error) {
	f.logged = append(f.logged, req)
	return &models.SessionLog{CohortID: req.CohortID, WeekNumber: req.WeekNumber, Dynamics: req.Dynamics, Sequence: len(f.logged)}, nil
}

func (f *fakeBackend) Report(_ context.Context, scope string) (*models.CohortReport, error) {
	return &models.CohortReport{Scope: scope, Participants: 6, Sessions: 3, CompletionRatePercent: 33}, nil
}

func (f *fakeBackend) GrantSummary(_ context.Context, scope string, _ []string) (*models.NarrativeResponse, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return &models.NarrativeResponse{Text: "A season of healing in " + scope, Provider: "fake"}, nil
}

type fakes map[models.Role]*fakeBackend

func (fs fakes) dial(role models.Role) Backend {
	if fs[role] == nil {
		fs[role] = newFake(role)
	}
	return fs[role]
}

// run drives the model through cmd and every message it yields, depth
// first. Blink and spinner ticks are dropped.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		next, c := m.Update(msg)
		m = next.(Model)
		m = run(t, m, c)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case nil:
		return nil
	}
	if !interesting(msg) {
		return nil
	}
	return []tea.Msg{msg}
}

// interesting filters out timer driven messages that would block or loop.
func interesting(msg tea.Msg) bool {
	switch msg.(type) {
	case errMsg, identifiedMsg, overviewMsg, statusMsg,
		intakeSavedMsg, worksheetsLoadedMsg, worksheetSavedMsg, guidanceMsg,
		cohortsLoadedMsg, cohortDetailMsg, cohortCreatedMsg, enrolledMsg,
		participantUpdatedMsg, directoryLoadedMsg, scheduleLoadedMsg,
		scheduleSavedMsg, logsLoadedMsg, logSubmittedMsg, reportLoadedMsg,
		summaryMsg, previewMsg, tea.QuitMsg:
		return true
	}
	return false
}

func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return run(t, next.(Model), cmd)
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyLeft     = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keySignOut  = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyCtrlC    = tea.KeyMsg{Type: tea.KeyCtrlC}
	keySwitchTo = keyRune('R')
)

func signIn(t *testing.T, fs fakes, role models.Role) Model {
	t.Helper()
	m := NewRootModel(fs.dial, role, nil)
	m = run(t, m, m.Init())
	require.Equal(t, ViewModeMain, m.viewMode)
	require.Equal(t, role, m.role)
	return m
}

func gotoTab(t *testing.T, m Model, tab Tab) Model {
	t.Helper()
	for i := 0; i < 10 && m.tab != tab; i++ {
		m = press(t, m, keyTab)
	}
	require.Equal(t, tab, m.tab)
	return m
}

func TestLoginScreen(t *testing.T) {
	fs := fakes{}
	m := NewRootModel(fs.dial, "", nil)
	assert.Nil(t, m.Init())
	assert.Equal(t, ViewModeLogin, m.viewMode)
	assert.Contains(t, m.View(), "Participant Portal")

	m = press(t, m, keyDown)
	m = press(t, m, keyEnter)
	assert.Equal(t, ViewModeMain, m.viewMode)
	assert.Equal(t, models.RoleFacilitator, m.role)
	require.NotNil(t, m.fOverview)
	assert.Equal(t, 2, m.fOverview.Cohorts)
}

func TestSwitchRoleAndSignOut(t *testing.T) {
	fs := fakes{}
	m := signIn(t, fs, models.RoleFacilitator)

	m = press(t, m, keySwitchTo)
	assert.Equal(t, models.RoleParticipant, m.role)
	assert.Equal(t, TabOverview, m.tab)
	require.NotNil(t, m.pOverview)
	assert.Nil(t, m.fOverview)

	m = press(t, m, keySignOut)
	assert.Equal(t, ViewModeLogin, m.viewMode)
	assert.Nil(t, m.user)
}

func TestQuit(t *testing.T) {
	m := signIn(t, fakes{}, models.RoleParticipant)
	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(keyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestParticipantTabsHideIntakeWhenOnboarded(t *testing.T) {
	fs := fakes{models.RoleParticipant: newFake(models.RoleParticipant)}
	m := signIn(t, fs, models.RoleParticipant)
	assert.Equal(t, []Tab{TabOverview, TabWorksheets}, m.tabs())

	fs[models.RoleParticipant].onboarded = false
	m = press(t, m, keyRune('r'))
	assert.Equal(t, []Tab{TabOverview, TabIntake, TabWorksheets}, m.tabs())
}

func TestIntakeSubmit(t *testing.T) {
	p := newFake(models.RoleParticipant)
	p.onboarded = false
	fs := fakes{models.RoleParticipant: p}
	m := signIn(t, fs, models.RoleParticipant)
	m = gotoTab(t, m, TabIntake)

	m = press(t, m, keyRune('i'))
	require.True(t, m.focused)
	for i := 0; i < 8; i++ {
		m = press(t, m, keyRight)
	}
	assert.Equal(t, models.MaxRating, m.intake.ratings[0])

	m = press(t, m, keyTab)
	for i := 0; i < 8; i++ {
		m = press(t, m, keyLeft)
	}
	assert.Equal(t, models.MinRating, m.intake.ratings[1])

	m.intake.goal.SetValue("Healing through heritage")
	m.intake.meaning.SetValue("Our ancestors' brilliance")
	m = press(t, m, keyCtrlS)

	require.NotNil(t, p.intake)
	assert.Equal(t, models.IntakeRequest{
		BaselineConnection:        10,
		BaselineStress:            1,
		BaselineEfficacy:          5,
		PrimaryGoal:               "Healing through heritage",
		MeaningOfIndigenousGenius: "Our ancestors' brilliance",
	}, *p.intake)
	assert.True(t, m.onboarded)
	assert.Equal(t, TabWorksheets, m.tab)
	assert.NotContains(t, m.tabs(), TabIntake)
}

func TestWorksheetSaveAndGuidance(t *testing.T) {
	p := newFake(models.RoleParticipant)
	fs := fakes{models.RoleParticipant: p}
	m := signIn(t, fs, models.RoleParticipant)
	m = gotoTab(t, m, TabWorksheets)

	assert.Equal(t, "my hearth", m.sheets.editor.Value())
	assert.True(t, m.sheets.consent)

	m = press(t, m, keyRight)
	assert.Equal(t, 2, m.sheets.week)
	assert.Empty(t, m.sheets.editor.Value())

	m = press(t, m, keyRune('i'))
	m = press(t, m, keyRune('o'))
	m = press(t, m, keyRune('k'))
	m = press(t, m, keyEsc)
	assert.False(t, m.focused)

	m = press(t, m, keyRune('c'))
	m = press(t, m, keyCtrlS)
	require.Contains(t, p.saved, 2)
	assert.Equal(t, "ok", p.saved[2].Data[models.ReflectionKey])
	assert.True(t, p.saved[2].ConsentToQuote)
	assert.Contains(t, m.status, "Week 2")

	m = press(t, m, keyRune('g'))
	assert.Equal(t, []int{2}, p.guidanceFor)
	require.NotNil(t, m.sheets.guidance)
	assert.Equal(t, "Listen to the water.", m.sheets.guidance.Text)
	assert.False(t, m.busy)
}

func TestCohortManagement(t *testing.T) {
	f := newFake(models.RoleFacilitator)
	fs := fakes{models.RoleFacilitator: f}
	m := signIn(t, fs, models.RoleFacilitator)
	m = gotoTab(t, m, TabCohorts)

	require.Len(t, m.cohorts.list, 2)
	require.NotNil(t, m.cohorts.detail)
	assert.Equal(t, "cohort-001", m.cohorts.detail.ID)

	m = press(t, m, keyRune('s'))
	assert.Equal(t, models.StatusCompleted, f.statuses["usr_1"])
	assert.Equal(t, models.StatusCompleted, m.cohorts.detail.Participants[0].Status)

	m = press(t, m, keyRight)
	assert.Equal(t, "cohort-002", m.cohorts.detail.ID)

	m = press(t, m, keyRune('n'))
	require.True(t, m.focused)
	m.cohorts.name.SetValue("Fall Circle")
	m = press(t, m, keyEnter)
	assert.False(t, m.focused)
	assert.Equal(t, "cohort-new", m.cohorts.selected().ID)
	assert.Contains(t, m.status, "Fall Circle")
}

func TestDirectoryFilterCycles(t *testing.T) {
	f := newFake(models.RoleFacilitator)
	fs := fakes{models.RoleFacilitator: f}
	m := signIn(t, fs, models.RoleFacilitator)
	m = gotoTab(t, m, TabDirectory)
	require.NotNil(t, m.dir.resp)

	for _, want := range []string{"Active", "Completed", "Withdrawn", "All"} {
		m = press(t, m, keyRune('f'))
		last := f.dirQueries[len(f.dirQueries)-1]
		assert.Equal(t, want, last.Status)
	}

	m = press(t, m, keyRune('/'))
	m = press(t, m, keyRune('L'))
	last := f.dirQueries[len(f.dirQueries)-1]
	assert.Equal(t, "L", last.Search)
	assert.Len(t, m.dir.table.Rows(), 1)
	assert.Equal(t, "Spring Circle", m.dir.table.Rows()[0][2])
}

func TestScheduleSavesChangedWeeks(t *testing.T) {
	f := newFake(models.RoleFacilitator)
	fs := fakes{models.RoleFacilitator: f}
	m := signIn(t, fs, models.RoleFacilitator)
	m = gotoTab(t, m, TabSchedule)
	assert.Equal(t, "2024-04-02T18:00", m.sched.inputs[0].Value())

	m.sched.inputs[3].SetValue("https://zoom.us/j/2")
	m = press(t, m, keyCtrlS)
	require.Len(t, f.scheduled, 1)
	assert.Equal(t, "https://zoom.us/j/2", f.scheduled[2].ZoomLink)
	assert.Contains(t, m.status, "1 gatherings")
}

func TestSessionLogCommit(t *testing.T) {
	f := newFake(models.RoleFacilitator)
	fs := fakes{models.RoleFacilitator: f}
	m := signIn(t, fs, models.RoleFacilitator)
	m = gotoTab(t, m, TabLogs)

	m = press(t, m, keyDown)
	assert.Equal(t, 2, m.logs.week)
	m.logs.fields[0].SetValue("Deep sharing around the river.")
	m = press(t, m, keyCtrlS)

	require.Len(t, f.logged, 1)
	assert.Equal(t, models.SubmitLogRequest{CohortID: "cohort-001", WeekNumber: 2, Dynamics: "Deep sharing around the river."}, f.logged[0])
	assert.Empty(t, m.logs.fields[0].Value())
}

func TestReportGenerate(t *testing.T) {
	f := newFake(models.RoleFacilitator)
	fs := fakes{models.RoleFacilitator: f}
	m := signIn(t, fs, models.RoleFacilitator)
	m = gotoTab(t, m, TabReports)
	require.NotNil(t, m.report.report)
	assert.Equal(t, models.ScopeAll, m.report.report.Scope)

	m = press(t, m, keyRight)
	assert.Equal(t, "cohort-001", m.report.report.Scope)

	m = press(t, m, keyRune('g'))
	require.NotNil(t, m.report.narrative)
	assert.Equal(t, "A season of healing in cohort-001", m.report.narrative.Text)
	assert.Contains(t, m.View(), "GRANT NARRATIVE")

	f.summaryErr = errors.New("boom")
	m = press(t, m, keyRune('g'))
	assert.False(t, m.busy)
	assert.EqualError(t, m.err, "boom")
}

func TestParticipantPreview(t *testing.T) {
	fs := fakes{}
	m := signIn(t, fs, models.RoleFacilitator)
	m = gotoTab(t, m, TabPreview)
	require.NotNil(t, m.preview)
	assert.Equal(t, 9, m.preview.CircleMembers)
	assert.Equal(t, models.RoleFacilitator, m.role)
	assert.Contains(t, m.View(), "read only")
}

func TestHelpOverlay(t *testing.T) {
	m := signIn(t, fakes{}, models.RoleParticipant)
	m = press(t, m, keyRune('?'))
	assert.Equal(t, ViewModeHelp, m.viewMode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m = press(t, m, keyEsc)
	assert.Equal(t, ViewModeMain, m.viewMode)
}
