package tui

import (
	"context"

	"github.com/iammorganparry/circle/internal/models"
)

// Backend is the portal API as seen by one signed-in role. client.Client
// implements it.
type Backend interface {
	Identify(ctx context.Context) (*models.User, error)
	Overview(ctx context.Context) (*models.Overview, error)

	Intake(ctx context.Context) (*models.Intake, error)
	SubmitIntake(ctx context.Context, req models.IntakeRequest) (*models.Intake, error)
	Worksheets(ctx context.Context) ([]models.Worksheet, error)
	SaveWorksheet(ctx context.Context, week int, req models.WorksheetRequest) (*models.Worksheet, error)
	Guidance(ctx context.Context, week int, question string) (*models.NarrativeResponse, error)

	ListCohorts(ctx context.Context) ([]models.Cohort, error)
	CreateCohort(ctx context.Context, name string) (*models.Cohort, error)
	Cohort(ctx context.Context, id string) (*models.CohortDetail, error)
	Enroll(ctx context.Context, cohortID string, req models.EnrollRequest) (*models.Participant, error)
	SetParticipantStatus(ctx context.Context, id string, status models.ParticipantStatus) (*models.Participant, error)
	Directory(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryResponse, error)
	Schedule(ctx context.Context, cohortID string) ([]models.Session, error)
	ScheduleSession(ctx context.Context, cohortID string, week int, req models.ScheduleRequest) (*models.Session, error)
	Logs(ctx context.Context, cohortID string, week int) ([]models.SessionLog, error)
	SubmitLog(ctx context.Context, req models.SubmitLogRequest) (*models.SessionLog, error)
	Report(ctx context.Context, scope string) (*models.CohortReport, error)
	GrantSummary(ctx context.Context, scope string, quotes []string) (*models.NarrativeResponse, error)
}

// Dialer returns a Backend acting as role. Signing in and switching roles
// both dial.
type Dialer func(role models.Role) Backend
