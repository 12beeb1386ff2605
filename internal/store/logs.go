package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iammorganparry/circle/internal/models"
)

// LogStore is the append-only record of facilitator session logs.
type LogStore struct {
	db *DB
}

func NewLogStore(db *DB) *LogStore {
	return &LogStore{db: db}
}

// Append stores a new log and assigns its ID (when empty) and the next
// per-cohort sequence number.
func (s *LogStore) Append(ctx context.Context, l *models.SessionLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append log: %w", err)
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sequence), 0) + 1 FROM session_logs WHERE cohort_id = ?
	`, l.CohortID).Scan(&seq); err != nil {
		return fmt.Errorf("next log sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO session_logs (id, cohort_id, week_number, dynamics, significant_moments,
			challenges, self_reflection, facilitator_id, sequence, timestamp, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.CohortID, l.WeekNumber, l.Dynamics, l.SignificantMoments,
		l.Challenges, l.SelfReflection, l.FacilitatorID, seq, l.Timestamp, l.Type); err != nil {
		return fmt.Errorf("insert log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append log: %w", err)
	}
	l.Sequence = seq
	return nil
}

// List returns logs oldest first. An empty cohortID or a zero week means no
// filter on that column.
func (s *LogStore) List(ctx context.Context, cohortID string, week int) ([]models.SessionLog, error) {
	var (
		where []string
		args  []any
	)
	if cohortID != "" {
		where = append(where, "cohort_id = ?")
		args = append(args, cohortID)
	}
	if week > 0 {
		where = append(where, "week_number = ?")
		args = append(args, week)
	}

	q := `SELECT id, cohort_id, week_number, dynamics, significant_moments, challenges,
		self_reflection, facilitator_id, sequence, timestamp, type FROM session_logs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY timestamp, cohort_id, sequence"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []models.SessionLog
	for rows.Next() {
		var l models.SessionLog
		if err := rows.Scan(&l.ID, &l.CohortID, &l.WeekNumber, &l.Dynamics, &l.SignificantMoments,
			&l.Challenges, &l.SelfReflection, &l.FacilitatorID, &l.Sequence, &l.Timestamp, &l.Type); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DistinctWeeks returns the weeks that have at least one log, ascending.
func (s *LogStore) DistinctWeeks(ctx context.Context, cohortID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT week_number FROM session_logs WHERE cohort_id = ? ORDER BY week_number
	`, cohortID)
	if err != nil {
		return nil, fmt.Errorf("distinct log weeks: %w", err)
	}
	defer rows.Close()

	var weeks []int
	for rows.Next() {
		var w int
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan log week: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}
