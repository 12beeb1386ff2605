package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iammorganparry/circle/internal/models"
)

// IntakeStore handles baseline self-assessments.
type IntakeStore struct {
	db *DB
}

func NewIntakeStore(db *DB) *IntakeStore {
	return &IntakeStore{db: db}
}

const intakeColumns = `i.user_id, i.baseline_connection, i.baseline_stress, i.baseline_efficacy,
	i.primary_goal, i.meaning, i.submitted_at, i.updated_at`

func scanIntake(row interface{ Scan(...any) error }, in *models.Intake) error {
	return row.Scan(&in.UserID, &in.BaselineConnection, &in.BaselineStress, &in.BaselineEfficacy,
		&in.PrimaryGoal, &in.MeaningOfIndigenousGenius, &in.SubmittedAt, &in.UpdatedAt)
}

// Get returns the user's intake, or nil if none was submitted.
func (s *IntakeStore) Get(ctx context.Context, userID string) (*models.Intake, error) {
	var in models.Intake
	err := scanIntake(s.db.QueryRowContext(ctx,
		`SELECT `+intakeColumns+` FROM intakes i WHERE i.user_id = ?`, userID), &in)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get intake: %w", err)
	}
	return &in, nil
}

// Upsert writes the intake. The first SubmittedAt is kept on update.
func (s *IntakeStore) Upsert(ctx context.Context, in *models.Intake) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO intakes (user_id, baseline_connection, baseline_stress, baseline_efficacy,
			primary_goal, meaning, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			baseline_connection = excluded.baseline_connection,
			baseline_stress = excluded.baseline_stress,
			baseline_efficacy = excluded.baseline_efficacy,
			primary_goal = excluded.primary_goal,
			meaning = excluded.meaning,
			updated_at = excluded.updated_at
	`, in.UserID, in.BaselineConnection, in.BaselineStress, in.BaselineEfficacy,
		in.PrimaryGoal, in.MeaningOfIndigenousGenius, in.SubmittedAt, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert intake: %w", err)
	}
	return nil
}

// ListForRoster returns intakes of roster members. An empty cohortID covers
// every cohort.
func (s *IntakeStore) ListForRoster(ctx context.Context, cohortID string) ([]models.Intake, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+intakeColumns+` FROM intakes i
		JOIN participants p ON p.id = i.user_id
		WHERE ? = '' OR p.cohort_id = ?
		ORDER BY p.position
	`, cohortID, cohortID)
	if err != nil {
		return nil, fmt.Errorf("list roster intakes: %w", err)
	}
	defer rows.Close()

	var out []models.Intake
	for rows.Next() {
		var in models.Intake
		if err := scanIntake(rows, &in); err != nil {
			return nil, fmt.Errorf("scan intake: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// CheckInStore handles closing self-assessments.
type CheckInStore struct {
	db *DB
}

func NewCheckInStore(db *DB) *CheckInStore {
	return &CheckInStore{db: db}
}

// Get returns the user's closing check-in, or nil if none was submitted.
func (s *CheckInStore) Get(ctx context.Context, userID string) (*models.ClosingCheckIn, error) {
	var c models.ClosingCheckIn
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, connection, stress, efficacy, submitted_at FROM checkins WHERE user_id = ?
	`, userID).Scan(&c.UserID, &c.Connection, &c.Stress, &c.Efficacy, &c.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkin: %w", err)
	}
	return &c, nil
}

func (s *CheckInStore) Upsert(ctx context.Context, c *models.ClosingCheckIn) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkins (user_id, connection, stress, efficacy, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			connection = excluded.connection,
			stress = excluded.stress,
			efficacy = excluded.efficacy,
			submitted_at = excluded.submitted_at
	`, c.UserID, c.Connection, c.Stress, c.Efficacy, c.SubmittedAt)
	if err != nil {
		return fmt.Errorf("upsert checkin: %w", err)
	}
	return nil
}

// ListForRoster returns check-ins of roster members. An empty cohortID
// covers every cohort.
func (s *CheckInStore) ListForRoster(ctx context.Context, cohortID string) ([]models.ClosingCheckIn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.user_id, c.connection, c.stress, c.efficacy, c.submitted_at FROM checkins c
		JOIN participants p ON p.id = c.user_id
		WHERE ? = '' OR p.cohort_id = ?
		ORDER BY p.position
	`, cohortID, cohortID)
	if err != nil {
		return nil, fmt.Errorf("list roster checkins: %w", err)
	}
	defer rows.Close()

	var out []models.ClosingCheckIn
	for rows.Next() {
		var c models.ClosingCheckIn
		if err := rows.Scan(&c.UserID, &c.Connection, &c.Stress, &c.Efficacy, &c.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
