package models

// Role identifies which dashboard a user sees.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleFacilitator Role = "facilitator"
)

func (r Role) IsValid() bool {
	return r == RoleParticipant || r == RoleFacilitator
}

// Other returns the opposite role, used for the header role switch.
func (r Role) Other() Role {
	if r == RoleFacilitator {
		return RoleParticipant
	}
	return RoleFacilitator
}

// ParticipantStatus is the roster state of a cohort member.
type ParticipantStatus string

const (
	StatusActive    ParticipantStatus = "Active"
	StatusCompleted ParticipantStatus = "Completed"
	StatusWithdrawn ParticipantStatus = "Withdrawn"
)

// StatusAll is the directory filter value that matches every status.
const StatusAll = "All"

var ValidStatuses = map[ParticipantStatus]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusWithdrawn: true,
}

func (s ParticipantStatus) IsValid() bool {
	return ValidStatuses[s]
}

// ProgramWeeks is the fixed length of the circle program.
const ProgramWeeks = 4

// WeeklyTopics are the fixed topics, index 0 is week 1.
var WeeklyTopics = [ProgramWeeks]string{
	"Week 1: My Sacred Space",
	"Week 2: River of Release",
	"Week 3: Mother’s Mirror",
	"Week 4: My Medicine Bundle",
}

// TopicForWeek returns the canonical topic for a 1-based week number.
func TopicForWeek(week int) (string, bool) {
	if !ValidWeek(week) {
		return "", false
	}
	return WeeklyTopics[week-1], true
}

// ValidWeek reports whether week is inside the program.
func ValidWeek(week int) bool {
	return week >= 1 && week <= ProgramWeeks
}

// Rating bounds for intake and closing check-in scales.
const (
	MinRating = 1
	MaxRating = 10
)

func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// ScopeAll addresses the whole program instead of a single cohort.
const ScopeAll = "all"

// DemoUserID is the identity handed out by the mock sign-in.
const DemoUserID = "mock-uuid-12345"

// LogTypeFacilitator tags every session log record.
const LogTypeFacilitator = "FacilitatorLog"

// User is a signed-in portal user.
type User struct {
	ID          string `json:"userId"`
	Role        Role   `json:"role"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Affiliation string `json:"srpmicAffiliation"`
	CreatedAt   int64  `json:"createdAt"`
}

// Cohort is a named group moving through the program together.
type Cohort struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// Participant is a roster entry of a cohort.
type Participant struct {
	ID        string            `json:"id"`
	CohortID  string            `json:"cohortId"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Status    ParticipantStatus `json:"status"`
	CreatedAt int64             `json:"createdAt"`
}

// Intake is the baseline self-assessment submitted before week 1.
type Intake struct {
	UserID                    string `json:"userId"`
	BaselineConnection        int    `json:"baselineConnection"`
	BaselineStress            int    `json:"baselineStress"`
	BaselineEfficacy          int    `json:"baselineEfficacy"`
	PrimaryGoal               string `json:"primaryGoal"`
	MeaningOfIndigenousGenius string `json:"meaningOfIndigenousGenius"`
	SubmittedAt               int64  `json:"submittedAt"`
	UpdatedAt                 int64  `json:"updatedAt"`
}

// ClosingCheckIn is the end-of-program self-assessment on the intake scales.
type ClosingCheckIn struct {
	UserID      string `json:"userId"`
	Connection  int    `json:"connection"`
	Stress      int    `json:"stress"`
	Efficacy    int    `json:"efficacy"`
	SubmittedAt int64  `json:"submittedAt"`
}

// ReflectionKey is the Data key holding the free-text reflection.
const ReflectionKey = "reflection"

// Worksheet is a participant's weekly reflection.
type Worksheet struct {
	UserID         string         `json:"userId"`
	Week           int            `json:"week"`
	Topic          string         `json:"topic"`
	Data           map[string]any `json:"data"`
	Anonymous      bool           `json:"anonymous"`
	ConsentToQuote bool           `json:"consentToQuote"`
	Date           int64          `json:"date"`
}

// Reflection returns the free-text reflection, if any.
func (w *Worksheet) Reflection() string {
	if w == nil || w.Data == nil {
		return ""
	}
	s, _ := w.Data[ReflectionKey].(string)
	return s
}

// Session is one scheduled weekly gathering of a cohort.
type Session struct {
	CohortID   string `json:"cohortId"`
	WeekNumber int    `json:"weekNumber"`
	Topic      string `json:"topic"`
	DateTime   string `json:"dateTime"`
	ZoomLink   string `json:"zoomLink"`
}

// SessionLog is an append-only facilitator record of one gathering.
type SessionLog struct {
	ID                 string `json:"id"`
	CohortID           string `json:"cohortId"`
	WeekNumber         int    `json:"weekNumber"`
	Dynamics           string `json:"dynamics"`
	SignificantMoments string `json:"significantMoments"`
	Challenges         string `json:"challenges"`
	SelfReflection     string `json:"selfReflection"`
	FacilitatorID      string `json:"facilitatorId"`
	Sequence           int    `json:"sequence"`
	Timestamp          int64  `json:"timestamp"`
	Type               string `json:"type"`
}

// Averages holds means of the three self-assessment scales.
type Averages struct {
	Connection float64 `json:"connection"`
	Stress     float64 `json:"stress"`
	Efficacy   float64 `json:"efficacy"`
}

// Deltas holds post minus pre per scale.
type Deltas struct {
	ConnectionChange float64 `json:"connectionChange"`
	StressChange     float64 `json:"stressChange"`
	EfficacyChange   float64 `json:"efficacyChange"`
}

// CohortReport aggregates outcome metrics for a cohort or the whole program.
type CohortReport struct {
	Scope                 string   `json:"scope"`
	Participants          int      `json:"participants"`
	Sessions              int      `json:"sessions"`
	CompletionRatePercent int      `json:"completionRatePercent"`
	PreAverages           Averages `json:"preAverages"`
	PostAverages          Averages `json:"postAverages"`
	Deltas                Deltas   `json:"deltas"`
	PreSamples            int      `json:"preSamples"`
	PostSamples           int      `json:"postSamples"`
}

// NarrativeSummary is a stored grant narrative.
type NarrativeSummary struct {
	ID        string   `json:"id"`
	Scope     string   `json:"scope"`
	Text      string   `json:"text"`
	Provider  string   `json:"provider"`
	Quotes    []string `json:"quotes"`
	CreatedAt int64    `json:"createdAt"`
}
