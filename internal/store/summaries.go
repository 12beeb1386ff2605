package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iammorganparry/circle/internal/models"
)

// SummaryStore keeps generated grant narratives.
type SummaryStore struct {
	db *DB
}

func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

func (s *SummaryStore) Insert(ctx context.Context, sum *models.NarrativeSummary) error {
	if sum.ID == "" {
		sum.ID = uuid.New().String()
	}
	quotes := sum.Quotes
	if quotes == nil {
		quotes = []string{}
	}
	q, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("encode summary quotes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (id, scope, text, provider, quotes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sum.ID, sum.Scope, sum.Text, sum.Provider, string(q), sum.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// List returns stored narratives for a scope, newest first.
func (s *SummaryStore) List(ctx context.Context, scope string, limit int) ([]models.NarrativeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope, text, provider, quotes, created_at FROM summaries
		WHERE scope = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []models.NarrativeSummary
	for rows.Next() {
		var (
			sum    models.NarrativeSummary
			quotes string
		)
		if err := rows.Scan(&sum.ID, &sum.Scope, &sum.Text, &sum.Provider, &quotes, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if err := json.Unmarshal([]byte(quotes), &sum.Quotes); err != nil {
			return nil, fmt.Errorf("decode summary quotes: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
