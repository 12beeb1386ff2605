package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iammorganparry/circle/internal/models"
)

const participantColumns = `id, cohort_id, name, email, status, created_at`

// ParticipantStore handles cohort roster entries. Rows keep their insertion
// position so listings follow roster order.
type ParticipantStore struct {
	db *DB
}

func NewParticipantStore(db *DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) Create(ctx context.Context, p *models.Participant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, cohort_id, name, email, status, position, created_at)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM participants), ?)
	`, p.ID, p.CohortID, p.Name, p.Email, p.Status, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// Get returns a participant by ID, or nil if it does not exist.
func (s *ParticipantStore) Get(ctx context.Context, id string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id,
	).Scan(&p.ID, &p.CohortID, &p.Name, &p.Email, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return &p, nil
}

func (s *ParticipantStore) ListByCohort(ctx context.Context, cohortID string) ([]models.Participant, error) {
	return s.query(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE cohort_id = ? ORDER BY position`, cohortID)
}

// ListAll returns every participant across cohorts in roster order.
func (s *ParticipantStore) ListAll(ctx context.Context) ([]models.Participant, error) {
	return s.query(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY position`)
}

// UpdateStatus changes a participant's status. It reports false when no row
// matched.
func (s *ParticipantStore) UpdateStatus(ctx context.Context, id string, status models.ParticipantStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE participants SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, fmt.Errorf("update participant status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update participant status: %w", err)
	}
	return n > 0, nil
}

func (s *ParticipantStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

func (s *ParticipantStore) query(ctx context.Context, q string, args ...any) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.CohortID, &p.Name, &p.Email, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
