// Package portal implements the healing-circle operations on top of the
// stores and the narrative writer.
package portal

import (
	"context"
	"log/slog"
	"time"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/narrative"
	"github.com/iammorganparry/circle/internal/store"
)

// Narrator writes generated text. *narrative.Writer implements it.
type Narrator interface {
	GrantSummary(ctx context.Context, r models.CohortReport, quotes []string) narrative.Result
	WorksheetGuidance(ctx context.Context, week int, question string) narrative.Result
	Provider() string
	Enabled() bool
}

// Actor is the caller of an operation, taken from the request identity.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) require(role models.Role) error {
	if a.Role != role {
		return ErrForbidden
	}
	return nil
}

// requireAny accepts either role; participant reads are open to the
// facilitator preview.
func (a Actor) requireAny() error {
	if !a.Role.IsValid() || a.UserID == "" {
		return ErrForbidden
	}
	return nil
}

// Service is the facade for all portal operations.
type Service struct {
	db       *store.DB
	stores   *store.Stores
	narrator Narrator
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(db *store.DB, narrator Narrator, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		stores:   store.NewStores(db),
		narrator: narrator,
		logger:   logger,
		now:      time.Now,
	}
}

// Stores exposes the underlying stores for seeding.
func (s *Service) Stores() *store.Stores {
	return s.stores
}

// Health reports database reachability, roster size and the narrative provider.
func (s *Service) Health(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{Status: "ok"}

	if err := s.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
		if n, err := s.stores.Cohorts.Count(ctx); err == nil {
			resp.Cohorts = n
		}
		if n, err := s.stores.Participants.Count(ctx); err == nil {
			resp.Participants = n
		}
	}

	if s.narrator.Enabled() {
		resp.Narrative = models.ServiceCheck{Status: "ok", Message: s.narrator.Provider()}
	} else {
		resp.Narrative = models.ServiceCheck{Status: "disabled", Message: "fallback text only"}
	}
	return resp
}
