package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iammorganparry/circle/internal/models"
)

// DateTimeLayout is the datetime-local form used for session times.
const DateTimeLayout = "2006-01-02T15:04"

// Schedule returns the cohort's four sessions ordered by week.
func (s *Service) Schedule(ctx context.Context, actor Actor, cohortID string) ([]models.Session, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	if _, err := s.cohort(ctx, cohortID); err != nil {
		return nil, err
	}
	return s.schedule(ctx, cohortID)
}

// schedule fills in blank sessions for weeks without a row.
func (s *Service) schedule(ctx context.Context, cohortID string) ([]models.Session, error) {
	rows, err := s.stores.Schedule.List(ctx, cohortID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Session, models.ProgramWeeks)
	for i, topic := range models.WeeklyTopics {
		out[i] = models.Session{CohortID: cohortID, WeekNumber: i + 1, Topic: topic}
	}
	for _, r := range rows {
		if models.ValidWeek(r.WeekNumber) {
			out[r.WeekNumber-1] = r
		}
	}
	return out, nil
}

// ScheduleSession sets the date-time and meeting link of one week. The topic
// always follows the week.
func (s *Service) ScheduleSession(ctx context.Context, actor Actor, cohortID string, week int, req models.ScheduleRequest) (*models.Session, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	topic, ok := models.TopicForWeek(week)
	if !ok {
		return nil, invalid("weekNumber", "must be between 1 and %d", models.ProgramWeeks)
	}
	dt, err := normalizeDateTime(req.DateTime)
	if err != nil {
		return nil, err
	}
	link, err := normalizeLink(req.ZoomLink)
	if err != nil {
		return nil, err
	}
	if _, err := s.cohort(ctx, cohortID); err != nil {
		return nil, err
	}

	sess := &models.Session{CohortID: cohortID, WeekNumber: week, Topic: topic, DateTime: dt, ZoomLink: link}
	if err := s.stores.Schedule.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("schedule session: %w", err)
	}
	s.logger.Info("session scheduled", "cohort_id", cohortID, "week", week, "date_time", dt)
	return sess, nil
}

// normalizeDateTime accepts datetime-local or RFC 3339 and returns the
// datetime-local form in the value's own wall clock.
func normalizeDateTime(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if t, err := time.Parse(DateTimeLayout, v); err == nil {
		return t.Format(DateTimeLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Format(DateTimeLayout), nil
	}
	return "", invalid("dateTime", "must look like %s", DateTimeLayout)
}

func normalizeLink(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalid("zoomLink", "must be an http(s) URL")
	}
	return u.String(), nil
}
