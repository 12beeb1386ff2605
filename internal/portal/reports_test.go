package portal

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/circle/internal/models"
)

func TestReportFromSeed(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	got, err := svc.Report(ctx, facilitator, "cohort-001")
	require.NoError(t, err)
	want := &models.CohortReport{
		Scope:                 "cohort-001",
		Participants:          6,
		Sessions:              3,
		CompletionRatePercent: 33,
		PreAverages:           models.Averages{Connection: 4.2, Stress: 7.8, Efficacy: 5},
		PostAverages:          models.Averages{Connection: 8.5, Stress: 3.5, Efficacy: 9},
		Deltas:                models.Deltas{ConnectionChange: 4.3, StressChange: -4.3, EfficacyChange: 4},
		PreSamples:            5,
		PostSamples:           2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	all, err := svc.Report(ctx, facilitator, models.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, 9, all.Participants)
	assert.Equal(t, 22, all.CompletionRatePercent)
	assert.Equal(t, 3, all.Sessions)
	// The demo user is not on a roster, so its intake is not counted.
	assert.Equal(t, 5, all.PreSamples)
}

func TestReportEmptyCohort(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	c, err := svc.CreateCohort(ctx, facilitator, "Empty")
	require.NoError(t, err)

	r, err := svc.Report(ctx, facilitator, c.ID)
	require.NoError(t, err)
	assert.Zero(t, r.Participants)
	assert.Zero(t, r.CompletionRatePercent)
	assert.Zero(t, r.Sessions)
	assert.Equal(t, models.Deltas{}, r.Deltas)
}

func TestReportDeltasNeedBothSides(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	// cohort-002 has no intakes or check-ins.
	r, err := svc.Report(ctx, facilitator, "cohort-002")
	require.NoError(t, err)
	assert.Equal(t, 0, r.PreSamples)
	assert.Equal(t, models.Deltas{}, r.Deltas)

	require.NoError(t, svc.Stores().CheckIns.Upsert(ctx, &models.ClosingCheckIn{UserID: "usr_4m22q", Connection: 7, Stress: 3, Efficacy: 8}))
	r, err = svc.Report(ctx, facilitator, "cohort-002")
	require.NoError(t, err)
	assert.Equal(t, 1, r.PostSamples)
	assert.Equal(t, models.Averages{Connection: 7, Stress: 3, Efficacy: 8}, r.PostAverages)
	assert.Equal(t, models.Deltas{}, r.Deltas)
}

func TestReportScopes(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Report(ctx, facilitator, "cohort-404")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Report(ctx, facilitator, "")
	requireField(t, err, "scope")
	_, err = svc.Report(ctx, participant, models.ScopeAll)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGrantSummary(t *testing.T) {
	svc, n := newTestService(t, true)
	ctx := context.Background()

	resp, err := svc.GrantSummary(ctx, facilitator, "cohort-001", nil)
	require.NoError(t, err)
	assert.False(t, resp.Fallback)
	assert.Equal(t, "A season of healing.", resp.Text)
	assert.Equal(t, []string{"Heritage is my anchor.", "Found safety in sisterhood."}, resp.Quotes)
	assert.Equal(t, "cohort-001", n.gotReport.Scope)

	resp, err = svc.GrantSummary(ctx, facilitator, "cohort-001", []string{"  Our <private>secret</private>voices  ", "Our voices"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Our voices"}, resp.Quotes)

	stored, err := svc.Summaries(ctx, facilitator, "cohort-001")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "fake", stored[0].Provider)

	n.fallback = true
	resp, err = svc.GrantSummary(ctx, facilitator, "cohort-001", nil)
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	stored, err = svc.Summaries(ctx, facilitator, "cohort-001")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "fallback text is not stored")

	empty, err := svc.Summaries(ctx, facilitator, models.ScopeAll)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGrantSummaryCapsAutoQuotes(t *testing.T) {
	svc, n := newTestService(t, false)
	ctx := context.Background()

	for week := 1; week <= 4; week++ {
		for _, user := range []string{"a", "b"} {
			require.NoError(t, svc.Stores().Worksheets.Upsert(ctx, &models.Worksheet{
				UserID: user, Week: week, ConsentToQuote: true, Date: int64(week*10) + int64(len(user)),
				Data: map[string]any{"reflection": user + " week " + string(rune('0'+week))},
			}))
		}
	}

	resp, err := svc.GrantSummary(ctx, facilitator, models.ScopeAll, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Quotes, 5)
	assert.Len(t, n.gotQuotes, 5)
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	ov, err := svc.Overview(ctx, facilitator)
	require.NoError(t, err)
	require.NotNil(t, ov.Facilitator)
	assert.Nil(t, ov.Participant)
	assert.Equal(t, 2, ov.Facilitator.Cohorts)
	assert.Equal(t, 9, ov.Facilitator.Participants)
	assert.Equal(t, 22, ov.Facilitator.CompletionPercent)
	assert.Equal(t, ov.Facilitator.Report.Deltas.StressChange, ov.Facilitator.StressDelta)
	assert.Equal(t, []string{"Heritage is my anchor.", "Found safety in sisterhood."}, ov.Facilitator.RecentReflections)

	ov, err = svc.Overview(ctx, participant)
	require.NoError(t, err)
	require.NotNil(t, ov.Participant)
	assert.Equal(t, 9, ov.Participant.CircleMembers)
	assert.Equal(t, 3, ov.Participant.SessionsHeld)
	assert.Equal(t, 22, ov.Participant.GlobalCompletion)
	assert.True(t, ov.Participant.Onboarding.Complete)
}

func TestHealth(t *testing.T) {
	svc, n := newTestService(t, true)

	h := svc.Health(context.Background())
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "ok", h.DB.Status)
	assert.Equal(t, 2, h.Cohorts)
	assert.Equal(t, 9, h.Participants)
	assert.Equal(t, "ok", h.Narrative.Status)

	n.fallback = true
	h = svc.Health(context.Background())
	assert.Equal(t, "disabled", h.Narrative.Status)
}
