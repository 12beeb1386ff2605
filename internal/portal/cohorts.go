package portal

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/iammorganparry/circle/internal/models"
)

func shortID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// CreateCohort adds a cohort with four unscheduled sessions.
func (s *Service) CreateCohort(ctx context.Context, actor Actor, name string) (*models.Cohort, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	c := &models.Cohort{ID: shortID("cohort-"), Name: name, CreatedAt: s.now().Unix()}
	if err := s.stores.Cohorts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create cohort: %w", err)
	}
	s.logger.Info("cohort created", "cohort_id", c.ID, "name", c.Name)
	return c, nil
}

func (s *Service) ListCohorts(ctx context.Context, actor Actor) ([]models.Cohort, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	cohorts, err := s.stores.Cohorts.List(ctx)
	if err != nil {
		return nil, err
	}
	if cohorts == nil {
		cohorts = []models.Cohort{}
	}
	return cohorts, nil
}

// Cohort returns a cohort with its roster and schedule.
func (s *Service) Cohort(ctx context.Context, actor Actor, id string) (*models.CohortDetail, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	c, err := s.cohort(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.stores.Participants.ListByCohort(ctx, id)
	if err != nil {
		return nil, err
	}
	if roster == nil {
		roster = []models.Participant{}
	}
	sched, err := s.schedule(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CohortDetail{Cohort: *c, Participants: roster, Schedule: sched}, nil
}

func (s *Service) cohort(ctx context.Context, id string) (*models.Cohort, error) {
	c, err := s.stores.Cohorts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("cohort", id)
	}
	return c, nil
}

// EnrollParticipant adds an Active roster entry to a cohort.
func (s *Service) EnrollParticipant(ctx context.Context, actor Actor, cohortID string, req models.EnrollRequest) (*models.Participant, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, invalid("email", "is not a valid address")
		}
	}
	if _, err := s.cohort(ctx, cohortID); err != nil {
		return nil, err
	}

	p := &models.Participant{
		ID:        shortID("usr_"),
		CohortID:  cohortID,
		Name:      name,
		Email:     email,
		Status:    models.StatusActive,
		CreatedAt: s.now().Unix(),
	}
	if err := s.stores.Participants.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("enroll participant: %w", err)
	}
	s.logger.Info("participant enrolled", "participant_id", p.ID, "cohort_id", cohortID)
	return p, nil
}

func (s *Service) SetParticipantStatus(ctx context.Context, actor Actor, id string, status models.ParticipantStatus) (*models.Participant, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("status", "must be Active, Completed or Withdrawn")
	}
	ok, err := s.stores.Participants.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("participant", id)
	}
	s.logger.Info("participant status changed", "participant_id", id, "status", status)
	return s.stores.Participants.Get(ctx, id)
}

// Directory lists participants across cohorts in roster order, filtered by
// a case-insensitive name or email substring, a status and a cohort.
func (s *Service) Directory(ctx context.Context, actor Actor, q models.DirectoryQuery) (*models.DirectoryResponse, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}

	status := strings.TrimSpace(q.Status)
	if status != "" && status != models.StatusAll && !models.ParticipantStatus(status).IsValid() {
		return nil, invalid("status", "must be All, Active, Completed or Withdrawn")
	}
	if status == models.StatusAll {
		status = ""
	}

	var (
		all []models.Participant
		err error
	)
	if q.CohortID != "" {
		if _, err := s.cohort(ctx, q.CohortID); err != nil {
			return nil, err
		}
		all, err = s.stores.Participants.ListByCohort(ctx, q.CohortID)
	} else {
		all, err = s.stores.Participants.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	out := make([]models.Participant, 0, len(all))
	for _, p := range all {
		if status != "" && string(p.Status) != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(p.Name), needle) &&
			!strings.Contains(fold.String(p.Email), needle) {
			continue
		}
		out = append(out, p)
	}
	return &models.DirectoryResponse{Participants: out, Total: len(out)}, nil
}
