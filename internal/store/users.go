package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iammorganparry/circle/internal/models"
)

// UserStore persists signed-in portal users.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Ensure inserts the user or refreshes its role and profile fields.
// CreatedAt of an existing row is preserved.
func (s *UserStore) Ensure(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, role, full_name, email, phone, affiliation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			role = excluded.role,
			full_name = excluded.full_name,
			email = excluded.email,
			phone = excluded.phone,
			affiliation = excluded.affiliation
	`, u.ID, u.Role, u.FullName, u.Email, u.Phone, u.Affiliation, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// Get returns a user by ID, or nil if it does not exist.
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, full_name, email, phone, affiliation, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Role, &u.FullName, &u.Email, &u.Phone, &u.Affiliation, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
