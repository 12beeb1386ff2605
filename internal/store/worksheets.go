package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iammorganparry/circle/internal/models"
)

// WorksheetStore keeps one reflection per user and week.
type WorksheetStore struct {
	db *DB
}

func NewWorksheetStore(db *DB) *WorksheetStore {
	return &WorksheetStore{db: db}
}

const worksheetColumns = `user_id, week, data, anonymous, consent_to_quote, date`

func scanWorksheet(row interface{ Scan(...any) error }) (*models.Worksheet, error) {
	var (
		w    models.Worksheet
		data string
	)
	if err := row.Scan(&w.UserID, &w.Week, &data, &w.Anonymous, &w.ConsentToQuote, &w.Date); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &w.Data); err != nil {
		return nil, fmt.Errorf("decode worksheet data: %w", err)
	}
	w.Topic, _ = models.TopicForWeek(w.Week)
	return &w, nil
}

// ListByUser returns the user's saved worksheets ordered by week.
func (s *WorksheetStore) ListByUser(ctx context.Context, userID string) ([]models.Worksheet, error) {
	return s.query(ctx,
		`SELECT `+worksheetColumns+` FROM worksheets WHERE user_id = ? ORDER BY week`, userID)
}

// ListConsented returns worksheets whose author consented to quoting,
// newest first.
func (s *WorksheetStore) ListConsented(ctx context.Context, limit int) ([]models.Worksheet, error) {
	return s.query(ctx, `SELECT `+worksheetColumns+` FROM worksheets
		WHERE consent_to_quote = 1 ORDER BY date DESC, rowid DESC LIMIT ?`, limit)
}

// Upsert replaces the worksheet for the same user and week.
func (s *WorksheetStore) Upsert(ctx context.Context, w *models.Worksheet) error {
	data, err := json.Marshal(w.Data)
	if err != nil {
		return fmt.Errorf("encode worksheet data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO worksheets (user_id, week, data, anonymous, consent_to_quote, date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week) DO UPDATE SET
			data = excluded.data,
			anonymous = excluded.anonymous,
			consent_to_quote = excluded.consent_to_quote,
			date = excluded.date
	`, w.UserID, w.Week, string(data), w.Anonymous, w.ConsentToQuote, w.Date)
	if err != nil {
		return fmt.Errorf("upsert worksheet: %w", err)
	}
	return nil
}

func (s *WorksheetStore) query(ctx context.Context, q string, args ...any) ([]models.Worksheet, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	defer rows.Close()

	var out []models.Worksheet
	for rows.Next() {
		w, err := scanWorksheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worksheet: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}
