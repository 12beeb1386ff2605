package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iammorganparry/circle/internal/models"
)

// CohortStore handles cohort rows and their blank weekly sessions.
type CohortStore struct {
	db *DB
}

func NewCohortStore(db *DB) *CohortStore {
	return &CohortStore{db: db}
}

// Create inserts the cohort together with one unscheduled session per
// program week.
func (s *CohortStore) Create(ctx context.Context, c *models.Cohort) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create cohort: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cohorts (id, name, created_at) VALUES (?, ?, ?)
	`, c.ID, c.Name, c.CreatedAt); err != nil {
		return fmt.Errorf("insert cohort: %w", err)
	}

	for week, topic := range models.WeeklyTopics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (cohort_id, week_number, topic, date_time, zoom_link)
			VALUES (?, ?, ?, '', '')
		`, c.ID, week+1, topic); err != nil {
			return fmt.Errorf("insert session week %d: %w", week+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create cohort: %w", err)
	}
	return nil
}

// Get returns a cohort by ID, or nil if it does not exist.
func (s *CohortStore) Get(ctx context.Context, id string) (*models.Cohort, error) {
	var c models.Cohort
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM cohorts WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cohort: %w", err)
	}
	return &c, nil
}

// List returns all cohorts in creation order.
func (s *CohortStore) List(ctx context.Context) ([]models.Cohort, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM cohorts ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	defer rows.Close()

	var cohorts []models.Cohort
	for rows.Next() {
		var c models.Cohort
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cohort: %w", err)
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, rows.Err()
}

func (s *CohortStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cohorts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cohorts: %w", err)
	}
	return n, nil
}
