package store

import (
	"context"
	"fmt"

	"github.com/iammorganparry/circle/internal/models"
)

// ScheduleStore holds one session row per cohort and program week.
type ScheduleStore struct {
	db *DB
}

func NewScheduleStore(db *DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// List returns the cohort's sessions ordered by week.
func (s *ScheduleStore) List(ctx context.Context, cohortID string) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cohort_id, week_number, topic, date_time, zoom_link
		FROM sessions WHERE cohort_id = ? ORDER BY week_number
	`, cohortID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.CohortID, &sess.WeekNumber, &sess.Topic, &sess.DateTime, &sess.ZoomLink); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Upsert replaces the session for the same cohort and week.
func (s *ScheduleStore) Upsert(ctx context.Context, sess *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (cohort_id, week_number, topic, date_time, zoom_link)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cohort_id, week_number) DO UPDATE SET
			topic = excluded.topic,
			date_time = excluded.date_time,
			zoom_link = excluded.zoom_link
	`, sess.CohortID, sess.WeekNumber, sess.Topic, sess.DateTime, sess.ZoomLink)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
