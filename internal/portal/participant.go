package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/narrative"
	"github.com/iammorganparry/circle/internal/privacy"
)

// Intake returns the caller's intake. ErrNotFound means onboarding is not
// complete.
func (s *Service) Intake(ctx context.Context, actor Actor) (*models.Intake, error) {
	if err := actor.requireAny(); err != nil {
		return nil, err
	}
	in, err := s.stores.Intakes.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, notFound("intake", actor.UserID)
	}
	return in, nil
}

// Onboarding reports whether the caller has submitted an intake.
func (s *Service) Onboarding(ctx context.Context, actor Actor) (models.OnboardingState, error) {
	if err := actor.requireAny(); err != nil {
		return models.OnboardingState{}, err
	}
	in, err := s.stores.Intakes.Get(ctx, actor.UserID)
	if err != nil {
		return models.OnboardingState{}, err
	}
	return models.OnboardingState{Complete: in != nil}, nil
}

func checkRating(field string, v int) error {
	if !models.ValidRating(v) {
		return invalid(field, "must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
}

// SubmitIntake creates or updates the caller's intake.
func (s *Service) SubmitIntake(ctx context.Context, actor Actor, req models.IntakeRequest) (*models.Intake, error) {
	if err := actor.require(models.RoleParticipant); err != nil {
		return nil, err
	}
	for _, r := range []struct {
		field string
		v     int
	}{
		{"baselineConnection", req.BaselineConnection},
		{"baselineStress", req.BaselineStress},
		{"baselineEfficacy", req.BaselineEfficacy},
	} {
		if err := checkRating(r.field, r.v); err != nil {
			return nil, err
		}
	}
	goal := strings.TrimSpace(req.PrimaryGoal)
	if goal == "" {
		return nil, invalid("primaryGoal", "is required")
	}
	meaning := strings.TrimSpace(req.MeaningOfIndigenousGenius)
	if meaning == "" {
		return nil, invalid("meaningOfIndigenousGenius", "is required")
	}

	now := s.now().Unix()
	in := &models.Intake{
		UserID:                    actor.UserID,
		BaselineConnection:        req.BaselineConnection,
		BaselineStress:            req.BaselineStress,
		BaselineEfficacy:          req.BaselineEfficacy,
		PrimaryGoal:               goal,
		MeaningOfIndigenousGenius: meaning,
		SubmittedAt:               now,
		UpdatedAt:                 now,
	}
	if err := s.stores.Intakes.Upsert(ctx, in); err != nil {
		return nil, fmt.Errorf("submit intake: %w", err)
	}
	s.logger.Info("intake submitted", "user_id", actor.UserID)
	return s.stores.Intakes.Get(ctx, actor.UserID)
}

// CheckIn returns the caller's closing check-in.
func (s *Service) CheckIn(ctx context.Context, actor Actor) (*models.ClosingCheckIn, error) {
	if err := actor.requireAny(); err != nil {
		return nil, err
	}
	c, err := s.stores.CheckIns.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("checkin", actor.UserID)
	}
	return c, nil
}

// SubmitCheckIn records the caller's end-of-program self-assessment.
func (s *Service) SubmitCheckIn(ctx context.Context, actor Actor, req models.CheckInRequest) (*models.ClosingCheckIn, error) {
	if err := actor.require(models.RoleParticipant); err != nil {
		return nil, err
	}
	if err := checkRating("connection", req.Connection); err != nil {
		return nil, err
	}
	if err := checkRating("stress", req.Stress); err != nil {
		return nil, err
	}
	if err := checkRating("efficacy", req.Efficacy); err != nil {
		return nil, err
	}

	c := &models.ClosingCheckIn{
		UserID:      actor.UserID,
		Connection:  req.Connection,
		Stress:      req.Stress,
		Efficacy:    req.Efficacy,
		SubmittedAt: s.now().Unix(),
	}
	if err := s.stores.CheckIns.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("submit checkin: %w", err)
	}
	s.logger.Info("closing checkin submitted", "user_id", actor.UserID)
	return c, nil
}

// Worksheets returns one entry per program week; unwritten weeks have empty
// data.
func (s *Service) Worksheets(ctx context.Context, actor Actor) ([]models.Worksheet, error) {
	if err := actor.requireAny(); err != nil {
		return nil, err
	}
	saved, err := s.stores.Worksheets.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Worksheet, models.ProgramWeeks)
	for i, topic := range models.WeeklyTopics {
		out[i] = models.Worksheet{UserID: actor.UserID, Week: i + 1, Topic: topic, Data: map[string]any{}}
	}
	for _, w := range saved {
		if models.ValidWeek(w.Week) {
			out[w.Week-1] = w
		}
	}
	return out, nil
}

// SaveWorksheet replaces the caller's worksheet for a week.
func (s *Service) SaveWorksheet(ctx context.Context, actor Actor, week int, req models.WorksheetRequest) (*models.Worksheet, error) {
	if err := actor.require(models.RoleParticipant); err != nil {
		return nil, err
	}
	topic, ok := models.TopicForWeek(week)
	if !ok {
		return nil, invalid("week", "must be between 1 and %d", models.ProgramWeeks)
	}
	if len(req.Data) == 0 {
		return nil, invalid("data", "must not be empty")
	}
	if v, ok := req.Data[models.ReflectionKey]; ok {
		if _, isString := v.(string); !isString {
			return nil, invalid("data."+models.ReflectionKey, "must be text")
		}
	}

	w := &models.Worksheet{
		UserID:         actor.UserID,
		Week:           week,
		Topic:          topic,
		Data:           req.Data,
		Anonymous:      req.Anonymous,
		ConsentToQuote: req.ConsentToQuote,
		Date:           s.now().Unix(),
	}
	if err := s.stores.Worksheets.Upsert(ctx, w); err != nil {
		return nil, fmt.Errorf("save worksheet: %w", err)
	}
	s.logger.Info("worksheet saved", "user_id", actor.UserID, "week", week, "consent", w.ConsentToQuote)
	return w, nil
}

// Guidance asks the narrator for reflection prompts. An empty question uses
// the week's topic. Private spans never reach the narrator.
func (s *Service) Guidance(ctx context.Context, actor Actor, week int, question string) (*models.NarrativeResponse, error) {
	if err := actor.requireAny(); err != nil {
		return nil, err
	}
	topic, ok := models.TopicForWeek(week)
	if !ok {
		return nil, invalid("week", "must be between 1 and %d", models.ProgramWeeks)
	}
	question = strings.TrimSpace(question)
	if question != "" && privacy.HasOnlyPrivateContent(question) {
		return nil, invalid("question", "must contain text outside <private> tags")
	}
	question = privacy.StripPrivateTags(question)
	if question == "" {
		question = topic
	}
	return toResponse(s.narrator.WorksheetGuidance(ctx, week, question), nil), nil
}

func toResponse(r narrative.Result, quotes []string) *models.NarrativeResponse {
	return &models.NarrativeResponse{Text: r.Text, Fallback: r.Fallback, Provider: r.Provider, Quotes: quotes}
}
