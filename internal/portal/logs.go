package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/iammorganparry/circle/internal/models"
)

// SubmitLog appends a facilitator session log. Logs are never edited.
func (s *Service) SubmitLog(ctx context.Context, actor Actor, req models.SubmitLogRequest) (*models.SessionLog, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CohortID) == "" {
		return nil, invalid("cohortId", "is required")
	}
	if !models.ValidWeek(req.WeekNumber) {
		return nil, invalid("weekNumber", "must be between 1 and %d", models.ProgramWeeks)
	}
	if strings.TrimSpace(req.Dynamics) == "" {
		return nil, invalid("dynamics", "is required")
	}
	if _, err := s.cohort(ctx, req.CohortID); err != nil {
		return nil, err
	}

	l := &models.SessionLog{
		CohortID:           req.CohortID,
		WeekNumber:         req.WeekNumber,
		Dynamics:           strings.TrimSpace(req.Dynamics),
		SignificantMoments: strings.TrimSpace(req.SignificantMoments),
		Challenges:         strings.TrimSpace(req.Challenges),
		SelfReflection:     strings.TrimSpace(req.SelfReflection),
		FacilitatorID:      actor.UserID,
		Timestamp:          s.now().Unix(),
		Type:               models.LogTypeFacilitator,
	}
	if err := s.stores.Logs.Append(ctx, l); err != nil {
		return nil, fmt.Errorf("submit log: %w", err)
	}
	s.logger.Info("session log submitted",
		"log_id", l.ID,
		"cohort_id", l.CohortID,
		"week", l.WeekNumber,
		"sequence", l.Sequence,
	)
	return l, nil
}

// Logs lists session logs. Empty cohortID and zero week mean no filter.
func (s *Service) Logs(ctx context.Context, actor Actor, cohortID string, week int) ([]models.SessionLog, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	if week != 0 && !models.ValidWeek(week) {
		return nil, invalid("week", "must be between 1 and %d", models.ProgramWeeks)
	}
	if cohortID != "" {
		if _, err := s.cohort(ctx, cohortID); err != nil {
			return nil, err
		}
	}
	logs, err := s.stores.Logs.List(ctx, cohortID, week)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.SessionLog{}
	}
	return logs, nil
}
