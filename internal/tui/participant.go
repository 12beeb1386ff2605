package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/circle/internal/models"
)

type intakeSavedMsg struct{ intake *models.Intake }

type worksheetsLoadedMsg struct{ sheets []models.Worksheet }

type worksheetSavedMsg struct{ sheet *models.Worksheet }

type guidanceMsg struct {
	week int
	resp *models.NarrativeResponse
}

var ratingLabels = [3]string{"Cultural Connection", "Current Stress Level", "Self Efficacy"}

const (
	intakeGoalField    = 3
	intakeMeaningField = 4
	intakeFieldCount   = 5
)

// intakeForm holds the three rating sliders and two intention texts.
type intakeForm struct {
	ratings [3]int
	goal    textarea.Model
	meaning textarea.Model
	field   int
}

func newTextArea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.SetWidth(72)
	return ta
}

func newIntakeForm() intakeForm {
	return intakeForm{
		ratings: [3]int{5, 5, 5},
		goal:    newTextArea("E.g., Connection with heritage, releasing stress, finding sisterhood...", 3),
		meaning: newTextArea("Share your thoughts on the wisdom of your lineage...", 3),
	}
}

func (f *intakeForm) active() *textarea.Model {
	switch f.field {
	case intakeGoalField:
		return &f.goal
	case intakeMeaningField:
		return &f.meaning
	}
	return nil
}

func (f *intakeForm) focus(field int) tea.Cmd {
	f.blur()
	f.field = field
	if ta := f.active(); ta != nil {
		return ta.Focus()
	}
	return nil
}

func (f *intakeForm) blur() {
	f.goal.Blur()
	f.meaning.Blur()
}

func (f *intakeForm) adjust(delta int) {
	if f.field > 2 {
		return
	}
	v := f.ratings[f.field] + delta
	if v < models.MinRating {
		v = models.MinRating
	}
	if v > models.MaxRating {
		v = models.MaxRating
	}
	f.ratings[f.field] = v
}

func (f intakeForm) request() models.IntakeRequest {
	return models.IntakeRequest{
		BaselineConnection:        f.ratings[0],
		BaselineStress:            f.ratings[1],
		BaselineEfficacy:          f.ratings[2],
		PrimaryGoal:               strings.TrimSpace(f.goal.Value()),
		MeaningOfIndigenousGenius: strings.TrimSpace(f.meaning.Value()),
	}
}

// worksheetState is the weekly reflection editor.
type worksheetState struct {
	sheets    []models.Worksheet
	week      int
	editor    textarea.Model
	consent   bool
	anonymous bool
	guidance  *models.NarrativeResponse
}

func newWorksheetState() worksheetState {
	return worksheetState{
		week:   1,
		editor: newTextArea("Let your heart guide your medicine...", 10),
	}
}

// load copies the saved worksheet for the selected week into the editor.
func (s *worksheetState) load() {
	s.editor.Reset()
	s.consent, s.anonymous = false, false
	for _, w := range s.sheets {
		if w.Week == s.week {
			s.editor.SetValue(w.Reflection())
			s.consent, s.anonymous = w.ConsentToQuote, w.Anonymous
		}
	}
}

func (s worksheetState) topic() string {
	t, _ := models.TopicForWeek(s.week)
	return t
}

func (m Model) loadWorksheetsCmd() tea.Cmd {
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		sheets, err := b.Worksheets(ctx)
		if err != nil {
			return errMsg{err}
		}
		return worksheetsLoadedMsg{sheets}
	})
}

func (m Model) submitIntakeCmd() tea.Cmd {
	req := m.intake.request()
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		in, err := b.SubmitIntake(ctx, req)
		if err != nil {
			return errMsg{err}
		}
		return intakeSavedMsg{in}
	})
}

func (m Model) saveWorksheetCmd() tea.Cmd {
	week := m.sheets.week
	req := models.WorksheetRequest{
		Data:           map[string]any{models.ReflectionKey: m.sheets.editor.Value()},
		Anonymous:      m.sheets.anonymous,
		ConsentToQuote: m.sheets.consent,
	}
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		ws, err := b.SaveWorksheet(ctx, week, req)
		if err != nil {
			return errMsg{err}
		}
		return worksheetSavedMsg{ws}
	})
}

func (m Model) guidanceCmd() tea.Cmd {
	week := m.sheets.week
	question := m.sheets.topic()
	return m.call(func(ctx context.Context, b Backend) tea.Msg {
		resp, err := b.Guidance(ctx, week, question)
		if err != nil {
			return errMsg{err}
		}
		return guidanceMsg{week: week, resp: resp}
	})
}

func (m Model) updateParticipant(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case intakeSavedMsg:
		m.onboarded = true
		m.blurAll()
		m.tab = TabWorksheets
		m.err = nil
		m.status = "Your intentions have been recorded. Welcome to the circle."
		return m, tea.Batch(m.loadOverviewCmd(), m.loadWorksheetsCmd()), true

	case worksheetsLoadedMsg:
		m.sheets.sheets = msg.sheets
		m.sheets.load()
		return m, nil, true

	case worksheetSavedMsg:
		replaced := false
		for i, w := range m.sheets.sheets {
			if w.Week == msg.sheet.Week {
				m.sheets.sheets[i] = *msg.sheet
				replaced = true
			}
		}
		if !replaced {
			m.sheets.sheets = append(m.sheets.sheets, *msg.sheet)
		}
		m.err = nil
		m.status = fmt.Sprintf("Week %d reflections recorded", msg.sheet.Week)
		return m, nil, true

	case guidanceMsg:
		m.busy = false
		if msg.week == m.sheets.week {
			m.sheets.guidance = msg.resp
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleParticipantKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabIntake:
		switch {
		case key.Matches(msg, m.keys.Focus, m.keys.Enter):
			m.focused = true
			cmd := m.intake.focus(m.intake.field)
			return m, cmd
		case key.Matches(msg, m.keys.Submit):
			return m, m.submitIntakeCmd()
		}

	case TabWorksheets:
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.sheets.week > 1 {
				m.sheets.week--
				m.sheets.guidance = nil
				m.sheets.load()
			}
		case key.Matches(msg, m.keys.Right):
			if m.sheets.week < models.ProgramWeeks {
				m.sheets.week++
				m.sheets.guidance = nil
				m.sheets.load()
			}
		case key.Matches(msg, m.keys.Consent):
			m.sheets.consent = !m.sheets.consent
		case key.Matches(msg, m.keys.Anonymous):
			m.sheets.anonymous = !m.sheets.anonymous
		case key.Matches(msg, m.keys.Generate):
			cmd := m.startBusy(m.guidanceCmd())
			return m, cmd
		case key.Matches(msg, m.keys.Submit):
			return m, m.saveWorksheetCmd()
		case key.Matches(msg, m.keys.Focus, m.keys.Enter):
			m.focused = true
			cmd := m.sheets.editor.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) intakeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.blurAll()
		return m, m.submitIntakeCmd()
	case key.Matches(msg, m.keys.NextPane):
		cmd := m.intake.focus((m.intake.field + 1) % intakeFieldCount)
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.intake.focus((m.intake.field + intakeFieldCount - 1) % intakeFieldCount)
		return m, cmd
	}

	if ta := m.intake.active(); ta != nil {
		var cmd tea.Cmd
		*ta, cmd = ta.Update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Left):
		m.intake.adjust(-1)
	case key.Matches(msg, m.keys.Right):
		m.intake.adjust(1)
	case key.Matches(msg, m.keys.Up):
		if m.intake.field > 0 {
			m.intake.field--
		}
	case key.Matches(msg, m.keys.Down):
		cmd := m.intake.focus(m.intake.field + 1)
		return m, cmd
	}
	return m, nil
}

func (m Model) worksheetFocusedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		m.blurAll()
		return m, m.saveWorksheetCmd()
	}
	var cmd tea.Cmd
	m.sheets.editor, cmd = m.sheets.editor.Update(msg)
	return m, cmd
}

func slider(v int) string {
	return SliderFillStyle.Render(strings.Repeat("█", v)) +
		SliderEmptyStyle.Render(strings.Repeat("░", models.MaxRating-v)) +
		ValueStyle.Render(fmt.Sprintf(" %2d", v))
}

func (m Model) participantOverviewView() string {
	ov := m.pOverview
	if ov == nil {
		return DimStyle.Render("Gathering your circle...")
	}
	return participantOverviewBody(ov)
}

func participantOverviewBody(ov *models.ParticipantOverview) string {
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Circle Members", fmt.Sprint(ov.CircleMembers)), " ",
		stat("Sessions Held", fmt.Sprint(ov.SessionsHeld)), " ",
		stat("Global Completion", fmt.Sprintf("%d%%", ov.GlobalCompletion)),
	)
	welcome := TitleStyle.Render("Welcome Home.") + "\n" +
		DimStyle.Render("Your space for heritage, healing, and connection.")
	var next string
	if ov.Onboarding.Complete {
		next = SuccessStyle.Render("Your intentions are recorded. Continue in My Worksheets.")
	} else {
		next = WarningStyle.Render("Begin with the Intake to open your journey.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render("My Sanctuary"), "", stats, "", welcome, "", next)
}

func (m Model) intakeView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("The Opening Prayer") + "\n")
	b.WriteString(DimStyle.Render("Honoring your current state as we begin our walk together.") + "\n\n")
	b.WriteString(LabelStyle.Render("INTERNAL LANDSCAPE") + "\n")
	for i, label := range ratingLabels {
		marker := "  "
		if m.focused && m.intake.field == i {
			marker = "▸ "
		}
		b.WriteString(fmt.Sprintf("%s%-22s %s\n", marker, label, slider(m.intake.ratings[i])))
	}
	b.WriteString("\n" + LabelStyle.Render("What is your primary goal for this circle?") + "\n")
	b.WriteString(m.intake.goal.View() + "\n")
	b.WriteString(LabelStyle.Render("What does 'Indigenous Genius' mean to you?") + "\n")
	b.WriteString(m.intake.meaning.View() + "\n\n")
	b.WriteString(DimStyle.Render("i edit • tab next field • ←/→ adjust • ctrl+s submit my intentions"))
	b.WriteString("\n" + DimStyle.Render("Your responses are private and held in sacred trust."))
	return b.String()
}

func (m Model) worksheetView() string {
	var weeks []string
	for w := 1; w <= models.ProgramWeeks; w++ {
		label := fmt.Sprintf("Week %d", w)
		if w == m.sheets.week {
			weeks = append(weeks, ActiveTabStyle.Render(label))
		} else {
			weeks = append(weeks, TabStyle.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(weeks, " ") + "\n\n")
	b.WriteString(LabelStyle.Render("WEEKLY BUNDLE") + "\n")
	b.WriteString(TitleStyle.Render(m.sheets.topic()) + "\n\n")
	b.WriteString(m.sheets.editor.View() + "\n\n")
	b.WriteString(checkbox(m.sheets.consent) + " consent to quote   " + checkbox(m.sheets.anonymous) + " anonymous\n\n")

	b.WriteString(TitleStyle.Render("Digital Medicine") + "\n")
	b.WriteString(DimStyle.Render("A modern reflection aid grounded in tradition.") + "\n")
	if g := m.sheets.guidance; g != nil {
		b.WriteString(NarrativeStyle.Render(g.Text) + "\n")
	} else {
		b.WriteString(DimStyle.Render("g seek reflection prompt") + "\n")
	}
	b.WriteString("\n" + DimStyle.Render("←/→ week • i write • c consent • a anonymous • ctrl+s record reflections"))
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return SuccessStyle.Render("[x]")
	}
	return DimStyle.Render("[ ]")
}
