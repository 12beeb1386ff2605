package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/narrative"
	"github.com/iammorganparry/circle/internal/portal"
	"github.com/iammorganparry/circle/internal/seed"
	"github.com/iammorganparry/circle/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type stubGenerator struct {
	text string
}

func (g stubGenerator) Name() string { return "stub" }

func (g stubGenerator) Generate(context.Context, narrative.Prompt) (string, error) {
	if g.text == "" {
		return "", narrative.ErrUnavailable
	}
	return g.text, nil
}

func newTestRouter(t *testing.T, apiKey string, gen narrative.Generator) *chi.Mux {
	t.Helper()
	db, err := store.Open(store.DriverPure, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := portal.NewService(db, narrative.NewWriter(gen, time.Second, logger), logger)

	d, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), svc.Stores(), d, time.Now())
	require.NoError(t, err)

	return NewRouter(svc, apiKey, logger)
}

type reqOpt func(*http.Request)

func as(role models.Role) reqOpt {
	return func(r *http.Request) { r.Header.Set(HeaderRole, string(role)) }
}

func bearer(key string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+key) }
}

func do(t *testing.T, h http.Handler, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, "secret", narrative.Disabled{})

	rec := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Cohorts)
	assert.Equal(t, 9, resp.Participants)
	assert.Equal(t, "disabled", resp.Narrative.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestBearerAuth(t *testing.T) {
	r := newTestRouter(t, "secret", narrative.Disabled{})

	rec := do(t, r, http.MethodGet, "/overview", nil, as(models.RoleFacilitator))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodGet, "/overview", nil, as(models.RoleFacilitator), bearer("wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodGet, "/overview", nil, as(models.RoleFacilitator), bearer("secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentity(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})

	rec := do(t, r, http.MethodPost, "/identity", models.IdentifyRequest{Role: models.RoleFacilitator})
	require.Equal(t, http.StatusOK, rec.Code)
	u := decode[models.User](t, rec)
	assert.Equal(t, models.DemoUserID, u.ID)
	assert.Equal(t, models.RoleFacilitator, u.Role)

	rec = do(t, r, http.MethodPost, "/identity", models.IdentifyRequest{Role: "admin"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "role", decode[models.ErrorResponse](t, rec).Field)
}

func TestIdentityHeaders(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})

	rec := do(t, r, http.MethodGet, "/overview", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodGet, "/overview", nil, as("admin"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "role", decode[models.ErrorResponse](t, rec).Field)
}

func TestOverviewShapeFollowsRole(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})

	rec := do(t, r, http.MethodGet, "/overview", nil, as(models.RoleFacilitator))
	require.Equal(t, http.StatusOK, rec.Code)
	ov := decode[models.Overview](t, rec)
	require.NotNil(t, ov.Facilitator)
	assert.Nil(t, ov.Participant)
	assert.Equal(t, 2, ov.Facilitator.Cohorts)

	rec = do(t, r, http.MethodGet, "/overview", nil, as(models.RoleParticipant))
	require.Equal(t, http.StatusOK, rec.Code)
	ov = decode[models.Overview](t, rec)
	require.NotNil(t, ov.Participant)
	assert.Nil(t, ov.Facilitator)
	assert.True(t, ov.Participant.Onboarding.Complete)
}

func TestFacilitatorRoutesRejectParticipants(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})

	for _, path := range []string{"/cohorts", "/directory", "/logs", "/reports/all"} {
		rec := do(t, r, http.MethodGet, path, nil, as(models.RoleParticipant))
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestCohortLifecycle(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodPost, "/cohorts", models.CreateCohortRequest{Name: "Fall Circle"}, fac)
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decode[models.Cohort](t, rec)
	assert.Equal(t, "Fall Circle", c.Name)

	rec = do(t, r, http.MethodPost, "/cohorts/"+c.ID+"/participants",
		models.EnrollRequest{Name: "Ada Begay", Email: "ada@example.org"}, fac)
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[models.Participant](t, rec)
	assert.Equal(t, models.StatusActive, p.Status)

	rec = do(t, r, http.MethodPatch, "/participants/"+p.ID,
		models.UpdateParticipantRequest{Status: models.StatusCompleted}, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCompleted, decode[models.Participant](t, rec).Status)

	rec = do(t, r, http.MethodGet, "/cohorts/"+c.ID, nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[models.CohortDetail](t, rec)
	assert.Len(t, detail.Participants, 1)
	assert.Len(t, detail.Schedule, models.ProgramWeeks)

	rec = do(t, r, http.MethodGet, "/cohorts/nope", nil, fac)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/cohorts", models.CreateCohortRequest{Name: "  "}, fac)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name", decode[models.ErrorResponse](t, rec).Field)
}

func TestDirectoryQuery(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodGet, "/directory", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[models.DirectoryResponse](t, rec).Total)

	rec = do(t, r, http.MethodGet, "/directory?status=Completed", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, p := range decode[models.DirectoryResponse](t, rec).Participants {
		assert.Equal(t, models.StatusCompleted, p.Status)
	}

	rec = do(t, r, http.MethodGet, "/directory?cohort_id=cohort-001", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode[models.DirectoryResponse](t, rec).Total)

	rec = do(t, r, http.MethodGet, "/directory?status=Paused", nil, fac)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode[models.ErrorResponse](t, rec).Field)
}

func TestScheduleSession(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodPut, "/cohorts/cohort-002/schedule/2", models.ScheduleRequest{
		DateTime: "2024-06-11T18:00",
		ZoomLink: "https://zoom.us/j/222",
	}, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decode[models.Session](t, rec)
	assert.Equal(t, models.WeeklyTopics[1], sess.Topic)

	rec = do(t, r, http.MethodGet, "/cohorts/cohort-002/schedule", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Sessions []models.Session `json:"sessions"`
	}](t, rec)
	require.Len(t, list.Sessions, models.ProgramWeeks)
	assert.Equal(t, "2024-06-11T18:00", list.Sessions[1].DateTime)

	rec = do(t, r, http.MethodPut, "/cohorts/cohort-002/schedule/five", models.ScheduleRequest{}, fac)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "week", decode[models.ErrorResponse](t, rec).Field)

	rec = do(t, r, http.MethodPut, "/cohorts/cohort-002/schedule/5", models.ScheduleRequest{}, fac)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "weekNumber", decode[models.ErrorResponse](t, rec).Field)
}

func TestSessionLogs(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodPost, "/logs", models.SubmitLogRequest{
		CohortID:   "cohort-001",
		WeekNumber: 4,
		Dynamics:   "Quiet and warm.",
	}, fac)
	require.Equal(t, http.StatusCreated, rec.Code)
	l := decode[models.SessionLog](t, rec)
	assert.Equal(t, models.LogTypeFacilitator, l.Type)
	assert.Equal(t, models.DemoUserID, l.FacilitatorID)

	rec = do(t, r, http.MethodGet, "/logs?cohort_id=cohort-001&week=4", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[struct {
		Logs []models.SessionLog `json:"logs"`
	}](t, rec)
	require.Len(t, logs.Logs, 1)
	assert.Equal(t, l.ID, logs.Logs[0].ID)

	rec = do(t, r, http.MethodGet, "/logs?week=x", nil, fac)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "week", decode[models.ErrorResponse](t, rec).Field)

	rec = do(t, r, http.MethodPost, "/logs", models.SubmitLogRequest{CohortID: "cohort-001", WeekNumber: 1}, fac)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "dynamics", decode[models.ErrorResponse](t, rec).Field)
}

func TestReport(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodGet, "/reports/cohort-001", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decode[models.CohortReport](t, rec)
	assert.Equal(t, 6, rep.Participants)
	assert.Equal(t, 3, rep.Sessions)
	assert.Equal(t, 33, rep.CompletionRatePercent)

	rec = do(t, r, http.MethodGet, "/reports/unknown", nil, fac)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGrantSummaryFallbackIsOK(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodPost, "/reports/all/summary", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.NarrativeResponse](t, rec)
	assert.True(t, resp.Fallback)
	assert.Equal(t, narrative.GrantSummaryFallback, resp.Text)

	rec = do(t, r, http.MethodGet, "/reports/all/summaries", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Summaries []models.NarrativeSummary `json:"summaries"`
	}](t, rec)
	assert.Empty(t, list.Summaries)
}

func TestGrantSummaryStored(t *testing.T) {
	r := newTestRouter(t, "", stubGenerator{text: "The circle held steady."})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodPost, "/reports/cohort-001/summary",
		models.SummaryRequest{Quotes: []string{"We found each other."}}, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.NarrativeResponse](t, rec)
	assert.False(t, resp.Fallback)
	assert.Equal(t, []string{"We found each other."}, resp.Quotes)

	rec = do(t, r, http.MethodGet, "/reports/cohort-001/summaries", nil, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Summaries []models.NarrativeSummary `json:"summaries"`
	}](t, rec)
	require.Len(t, list.Summaries, 1)
	assert.Equal(t, "The circle held steady.", list.Summaries[0].Text)
}

func TestParticipantRoutes(t *testing.T) {
	r := newTestRouter(t, "", stubGenerator{text: "Breathe with the river."})
	part := as(models.RoleParticipant)

	rec := do(t, r, http.MethodGet, "/me/intake", nil, part)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPut, "/me/checkin", models.CheckInRequest{Connection: 9, Stress: 2, Efficacy: 8}, part)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[models.ClosingCheckIn](t, rec).Connection)

	rec = do(t, r, http.MethodPut, "/me/checkin", models.CheckInRequest{Connection: 11, Stress: 2, Efficacy: 8}, part)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "connection", decode[models.ErrorResponse](t, rec).Field)

	rec = do(t, r, http.MethodPut, "/me/worksheets/2", models.WorksheetRequest{
		Data:           map[string]any{models.ReflectionKey: "I let the water carry it."},
		ConsentToQuote: true,
	}, part)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.WeeklyTopics[1], decode[models.Worksheet](t, rec).Topic)

	rec = do(t, r, http.MethodGet, "/me/worksheets", nil, part)
	require.Equal(t, http.StatusOK, rec.Code)
	sheets := decode[struct {
		Worksheets []models.Worksheet `json:"worksheets"`
	}](t, rec)
	assert.Len(t, sheets.Worksheets, models.ProgramWeeks)

	rec = do(t, r, http.MethodPost, "/me/worksheets/2/guidance", nil, part)
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[models.NarrativeResponse](t, rec)
	assert.Equal(t, "Breathe with the river.", g.Text)
	assert.False(t, g.Fallback)
}

func TestFacilitatorPreviewIsReadOnly(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})
	fac := as(models.RoleFacilitator)

	rec := do(t, r, http.MethodGet, "/me/worksheets", nil, fac)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/me/worksheets/1/guidance",
		models.GuidanceRequest{Question: "Where do I feel safe?"}, fac)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.NarrativeResponse](t, rec).Fallback)

	rec = do(t, r, http.MethodPut, "/me/checkin", models.CheckInRequest{Connection: 5, Stress: 5, Efficacy: 5}, fac)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, r, http.MethodPut, "/me/worksheets/1", models.WorksheetRequest{
		Data: map[string]any{models.ReflectionKey: "preview"},
	}, fac)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	r := newTestRouter(t, "", narrative.Disabled{})

	req := httptest.NewRequest(http.MethodPost, "/cohorts", bytes.NewBufferString("{"))
	req.Header.Set(HeaderRole, string(models.RoleFacilitator))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, "secret", narrative.Disabled{})
	rec := do(t, r, http.MethodOptions, "/cohorts", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), HeaderRole)
}
