package models

// IdentifyRequest is the payload for POST /identity.
type IdentifyRequest struct {
	Role Role `json:"role"`
}

// CreateCohortRequest is the payload for POST /cohorts.
type CreateCohortRequest struct {
	Name string `json:"name"`
}

// CohortDetail is returned from GET /cohorts/{id}.
type CohortDetail struct {
	Cohort
	Participants []Participant `json:"participants"`
	Schedule     []Session     `json:"schedule"`
}

// EnrollRequest is the payload for POST /cohorts/{id}/participants.
type EnrollRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateParticipantRequest is the payload for PATCH /participants/{id}.
type UpdateParticipantRequest struct {
	Status ParticipantStatus `json:"status"`
}

// DirectoryQuery holds parsed query params for GET /directory.
type DirectoryQuery struct {
	Search   string `json:"q"`
	Status   string `json:"status"`
	CohortID string `json:"cohortId"`
}

// DirectoryResponse is returned from GET /directory.
type DirectoryResponse struct {
	Participants []Participant `json:"participants"`
	Total        int           `json:"total"`
}

// ScheduleRequest is the payload for PUT /cohorts/{id}/schedule/{week}.
type ScheduleRequest struct {
	DateTime string `json:"dateTime"`
	ZoomLink string `json:"zoomLink"`
}

// SubmitLogRequest is the payload for POST /logs.
type SubmitLogRequest struct {
	CohortID           string `json:"cohortId"`
	WeekNumber         int    `json:"weekNumber"`
	Dynamics           string `json:"dynamics"`
	SignificantMoments string `json:"significantMoments"`
	Challenges         string `json:"challenges"`
	SelfReflection     string `json:"selfReflection"`
}

// IntakeRequest is the payload for PUT /me/intake.
type IntakeRequest struct {
	BaselineConnection        int    `json:"baselineConnection"`
	BaselineStress            int    `json:"baselineStress"`
	BaselineEfficacy          int    `json:"baselineEfficacy"`
	PrimaryGoal               string `json:"primaryGoal"`
	MeaningOfIndigenousGenius string `json:"meaningOfIndigenousGenius"`
}

// CheckInRequest is the payload for PUT /me/checkin.
type CheckInRequest struct {
	Connection int `json:"connection"`
	Stress     int `json:"stress"`
	Efficacy   int `json:"efficacy"`
}

// WorksheetRequest is the payload for PUT /me/worksheets/{week}.
type WorksheetRequest struct {
	Data           map[string]any `json:"data"`
	Anonymous      bool           `json:"anonymous"`
	ConsentToQuote bool           `json:"consentToQuote"`
}

// GuidanceRequest is the payload for POST /me/worksheets/{week}/guidance.
type GuidanceRequest struct {
	Question string `json:"question"`
}

// NarrativeResponse is returned by guidance and summary generation.
type NarrativeResponse struct {
	Text     string   `json:"text"`
	Fallback bool     `json:"fallback"`
	Provider string   `json:"provider"`
	Quotes   []string `json:"quotes,omitempty"`
}

// SummaryRequest is the payload for POST /reports/{scope}/summary.
type SummaryRequest struct {
	Quotes []string `json:"quotes"`
}

// OnboardingState tells the participant dashboard whether intake is done.
type OnboardingState struct {
	Complete bool `json:"complete"`
}

// FacilitatorOverview is returned from GET /overview for facilitators.
type FacilitatorOverview struct {
	Cohorts           int          `json:"cohorts"`
	Participants      int          `json:"participants"`
	CompletionPercent int          `json:"completionPercent"`
	StressDelta       float64      `json:"stressDelta"`
	Report            CohortReport `json:"report"`
	RecentReflections []string     `json:"recentReflections"`
}

// ParticipantOverview is returned from GET /overview for participants.
type ParticipantOverview struct {
	CircleMembers    int             `json:"circleMembers"`
	SessionsHeld     int             `json:"sessionsHeld"`
	GlobalCompletion int             `json:"globalCompletion"`
	Onboarding       OnboardingState `json:"onboarding"`
}

// Overview wraps whichever overview matches the caller's role.
type Overview struct {
	Role        Role                 `json:"role"`
	Facilitator *FacilitatorOverview `json:"facilitator,omitempty"`
	Participant *ParticipantOverview `json:"participant,omitempty"`
}

// ServiceCheck is the status of a single dependency.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status       string       `json:"status"`
	DB           ServiceCheck `json:"db"`
	Narrative    ServiceCheck `json:"narrative"`
	Cohorts      int          `json:"cohorts"`
	Participants int          `json:"participants"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
