package portal

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/iammorganparry/circle/internal/models"
)

const recentReflections = 5

// Overview returns the dashboard summary for the caller's role.
func (s *Service) Overview(ctx context.Context, actor Actor) (*models.Overview, error) {
	if err := actor.requireAny(); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleFacilitator {
		f, err := s.facilitatorOverview(ctx)
		if err != nil {
			return nil, err
		}
		return &models.Overview{Role: actor.Role, Facilitator: f}, nil
	}
	p, err := s.ParticipantOverview(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &models.Overview{Role: actor.Role, Participant: p}, nil
}

func (s *Service) facilitatorOverview(ctx context.Context) (*models.FacilitatorOverview, error) {
	var (
		out     models.FacilitatorOverview
		report  *models.CohortReport
		quotes  []string
		cohorts int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cohorts, err = s.stores.Cohorts.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		report, err = s.report(gctx, models.ScopeAll)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = s.consentedQuotes(gctx, recentReflections)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Cohorts = cohorts
	out.Participants = report.Participants
	out.CompletionPercent = report.CompletionRatePercent
	out.StressDelta = report.Deltas.StressChange
	out.Report = *report
	out.RecentReflections = quotes
	return &out, nil
}

// ParticipantOverview is the participant dashboard. Facilitators may read it
// as a preview.
func (s *Service) ParticipantOverview(ctx context.Context, actor Actor) (*models.ParticipantOverview, error) {
	if err := actor.requireAny(); err != nil {
		return nil, err
	}

	var (
		report     *models.CohortReport
		onboarding models.OnboardingState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.report(gctx, models.ScopeAll)
		return err
	})
	g.Go(func() error {
		var err error
		onboarding, err = s.Onboarding(gctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.ParticipantOverview{
		CircleMembers:    report.Participants,
		SessionsHeld:     report.Sessions,
		GlobalCompletion: report.CompletionRatePercent,
		Onboarding:       onboarding,
	}, nil
}
