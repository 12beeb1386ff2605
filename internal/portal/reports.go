package portal

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/privacy"
)

const (
	maxAutoQuotes    = 5
	consentedWindow  = 50
	summaryListLimit = 20
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Report aggregates outcome metrics for a cohort id or "all".
func (s *Service) Report(ctx context.Context, actor Actor, scope string) (*models.CohortReport, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	return s.report(ctx, scope)
}

func (s *Service) report(ctx context.Context, scope string) (*models.CohortReport, error) {
	cohortID, err := s.resolveScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var roster []models.Participant
	if cohortID == "" {
		roster, err = s.stores.Participants.ListAll(ctx)
	} else {
		roster, err = s.stores.Participants.ListByCohort(ctx, cohortID)
	}
	if err != nil {
		return nil, fmt.Errorf("report roster: %w", err)
	}

	sessions, err := s.heldSessions(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	intakes, err := s.stores.Intakes.ListForRoster(ctx, cohortID)
	if err != nil {
		return nil, fmt.Errorf("report intakes: %w", err)
	}
	checkins, err := s.stores.CheckIns.ListForRoster(ctx, cohortID)
	if err != nil {
		return nil, fmt.Errorf("report checkins: %w", err)
	}

	r := &models.CohortReport{
		Scope:        scope,
		Participants: len(roster),
		Sessions:     sessions,
		PreSamples:   len(intakes),
		PostSamples:  len(checkins),
	}

	completed := 0
	for _, p := range roster {
		if p.Status == models.StatusCompleted {
			completed++
		}
	}
	if len(roster) > 0 {
		r.CompletionRatePercent = int(math.Round(100 * float64(completed) / float64(len(roster))))
	}

	if n := float64(len(intakes)); n > 0 {
		var c, st, e float64
		for _, in := range intakes {
			c += float64(in.BaselineConnection)
			st += float64(in.BaselineStress)
			e += float64(in.BaselineEfficacy)
		}
		r.PreAverages = models.Averages{Connection: round1(c / n), Stress: round1(st / n), Efficacy: round1(e / n)}
	}
	if n := float64(len(checkins)); n > 0 {
		var c, st, e float64
		for _, ci := range checkins {
			c += float64(ci.Connection)
			st += float64(ci.Stress)
			e += float64(ci.Efficacy)
		}
		r.PostAverages = models.Averages{Connection: round1(c / n), Stress: round1(st / n), Efficacy: round1(e / n)}
	}
	if r.PreSamples > 0 && r.PostSamples > 0 {
		r.Deltas = models.Deltas{
			ConnectionChange: round1(r.PostAverages.Connection - r.PreAverages.Connection),
			StressChange:     round1(r.PostAverages.Stress - r.PreAverages.Stress),
			EfficacyChange:   round1(r.PostAverages.Efficacy - r.PreAverages.Efficacy),
		}
	}
	return r, nil
}

// resolveScope maps a report scope to a cohort id; "all" maps to "".
func (s *Service) resolveScope(ctx context.Context, scope string) (string, error) {
	scope = strings.TrimSpace(scope)
	switch scope {
	case "":
		return "", invalid("scope", "is required")
	case models.ScopeAll:
		return "", nil
	}
	if _, err := s.cohort(ctx, scope); err != nil {
		return "", err
	}
	return scope, nil
}

// heldSessions counts distinct logged weeks, summed over cohorts for the
// whole program.
func (s *Service) heldSessions(ctx context.Context, cohortID string) (int, error) {
	ids := []string{cohortID}
	if cohortID == "" {
		cohorts, err := s.stores.Cohorts.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("report cohorts: %w", err)
		}
		ids = ids[:0]
		for _, c := range cohorts {
			ids = append(ids, c.ID)
		}
	}

	total := 0
	for _, id := range ids {
		weeks, err := s.stores.Logs.DistinctWeeks(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("report sessions: %w", err)
		}
		total += len(weeks)
	}
	return total, nil
}

// consentedQuotes returns up to max cleaned reflections from worksheets whose
// authors agreed to be quoted, newest first.
func (s *Service) consentedQuotes(ctx context.Context, max int) ([]string, error) {
	sheets, err := s.stores.Worksheets.ListConsented(ctx, consentedWindow)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(sheets))
	for _, w := range sheets {
		texts = append(texts, w.Reflection())
	}
	return privacy.SelectQuotes(texts, max), nil
}

// GrantSummary generates a grant narrative for the scope. Without explicit
// quotes, consented reflections are used. Successful narratives are stored.
func (s *Service) GrantSummary(ctx context.Context, actor Actor, scope string, quotes []string) (*models.NarrativeResponse, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	r, err := s.report(ctx, scope)
	if err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		quotes, err = s.consentedQuotes(ctx, maxAutoQuotes)
		if err != nil {
			return nil, fmt.Errorf("select quotes: %w", err)
		}
	} else {
		quotes = privacy.SelectQuotes(quotes, 0)
	}

	res := s.narrator.GrantSummary(ctx, *r, quotes)
	if !res.Fallback {
		sum := &models.NarrativeSummary{
			Scope:     r.Scope,
			Text:      res.Text,
			Provider:  res.Provider,
			Quotes:    quotes,
			CreatedAt: s.now().Unix(),
		}
		if err := s.stores.Summaries.Insert(ctx, sum); err != nil {
			return nil, fmt.Errorf("store summary: %w", err)
		}
		s.logger.Info("grant summary generated", "scope", r.Scope, "provider", res.Provider, "quotes", len(quotes))
	}
	return toResponse(res, quotes), nil
}

// Summaries lists stored narratives for a scope, newest first.
func (s *Service) Summaries(ctx context.Context, actor Actor, scope string) ([]models.NarrativeSummary, error) {
	if err := actor.require(models.RoleFacilitator); err != nil {
		return nil, err
	}
	if _, err := s.resolveScope(ctx, scope); err != nil {
		return nil, err
	}
	out, err := s.stores.Summaries.List(ctx, strings.TrimSpace(scope), summaryListLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.NarrativeSummary{}
	}
	return out, nil
}
