package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/circle/internal/api"
	"github.com/iammorganparry/circle/internal/client"
	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/narrative"
	"github.com/iammorganparry/circle/internal/portal"
	"github.com/iammorganparry/circle/internal/seed"
	"github.com/iammorganparry/circle/internal/store"
)

type fakeAPI struct {
	dirQuery  models.DirectoryQuery
	logsWeek  int
	scope     string
	quotes    []string
	question  string
	reportErr error
}

func (f *fakeAPI) Directory(_ context.Context, q models.DirectoryQuery) (*models.DirectoryResponse, error) {
	f.dirQuery = q
	return &models.DirectoryResponse{
		Participants: []models.Participant{{ID: "usr_1", Name: "Ada", Status: models.StatusActive}},
		Total:        3,
	}, nil
}

func (f *fakeAPI) Schedule(_ context.Context, cohortID string) ([]models.Session, error) {
	return []models.Session{{CohortID: cohortID, WeekNumber: 1, Topic: models.WeeklyTopics[0]}}, nil
}

func (f *fakeAPI) Logs(_ context.Context, _ string, week int) ([]models.SessionLog, error) {
	f.logsWeek = week
	return nil, nil
}

func (f *fakeAPI) Report(_ context.Context, scope string) (*models.CohortReport, error) {
	f.scope = scope
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return &models.CohortReport{Scope: scope, Participants: 6, CompletionRatePercent: 33}, nil
}

func (f *fakeAPI) GrantSummary(_ context.Context, scope string, quotes []string) (*models.NarrativeResponse, error) {
	f.scope = scope
	f.quotes = quotes
	return &models.NarrativeResponse{Text: "summary", Provider: "stub"}, nil
}

func (f *fakeAPI) Guidance(_ context.Context, _ int, question string) (*models.NarrativeResponse, error) {
	f.question = question
	return &models.NarrativeResponse{Text: "breathe", Fallback: true, Provider: "fallback"}, nil
}

func connect(t *testing.T, a API) *mcp.ClientSession {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(a, logger)

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serve(ctx, serverTransport)
	}()

	c := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer connectCancel()
	session, err := c.Connect(connectCtx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveErr:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
		session.Close()
	})
	return session
}

func call(t *testing.T, s *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func decodeStructured[T any](t *testing.T, v any) T {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestListTools(t *testing.T) {
	s := connect(t, &fakeAPI{})
	res, err := s.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		if tool.Name == "circle_directory" {
			assert.Contains(t, tool.Description, "number of entries that matched")
		}
	}
	assert.ElementsMatch(t, []string{
		"circle_directory",
		"circle_schedule",
		"circle_session_logs",
		"circle_report",
		"circle_grant_summary",
		"circle_worksheet_guidance",
	}, names)
}

func TestDirectoryTool(t *testing.T) {
	f := &fakeAPI{}
	s := connect(t, f)

	res := call(t, s, "circle_directory", map[string]any{"search": "ada", "status": "Active"})
	require.False(t, res.IsError, "%+v", res.Content)

	out := decodeStructured[DirectoryResult](t, res.StructuredContent)
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Participants, 1)
	assert.Equal(t, "Ada", out.Participants[0].Name)
	assert.Equal(t, models.DirectoryQuery{Search: "ada", Status: "Active"}, f.dirQuery)
}

func TestScheduleToolRequiresCohort(t *testing.T) {
	s := connect(t, &fakeAPI{})

	res := call(t, s, "circle_schedule", map[string]any{"cohort_id": "  "})
	assert.True(t, res.IsError)

	res = call(t, s, "circle_schedule", map[string]any{"cohort_id": "cohort-001"})
	require.False(t, res.IsError, "%+v", res.Content)
	out := decodeStructured[ScheduleResult](t, res.StructuredContent)
	require.Len(t, out.Sessions, 1)
	assert.Equal(t, "cohort-001", out.Sessions[0].CohortID)
}

func TestSessionLogsToolWeekBounds(t *testing.T) {
	f := &fakeAPI{}
	s := connect(t, f)

	res := call(t, s, "circle_session_logs", map[string]any{"week": 5})
	assert.True(t, res.IsError)

	res = call(t, s, "circle_session_logs", map[string]any{"week": 2})
	require.False(t, res.IsError, "%+v", res.Content)
	assert.Equal(t, 2, f.logsWeek)
	out := decodeStructured[SessionLogsResult](t, res.StructuredContent)
	assert.NotNil(t, out.Logs)
	assert.Empty(t, out.Logs)
}

func TestReportToolDefaultsToAll(t *testing.T) {
	f := &fakeAPI{}
	s := connect(t, f)

	res := call(t, s, "circle_report", map[string]any{})
	require.False(t, res.IsError, "%+v", res.Content)
	assert.Equal(t, models.ScopeAll, f.scope)

	out := decodeStructured[models.CohortReport](t, res.StructuredContent)
	assert.Equal(t, 33, out.CompletionRatePercent)
}

func TestReportToolSurfacesAPIError(t *testing.T) {
	f := &fakeAPI{reportErr: &client.APIError{Status: http.StatusNotFound, Message: "cohort not found"}}
	s := connect(t, f)

	res := call(t, s, "circle_report", map[string]any{"scope": "cohort-999"})
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "cohort not found")
}

func TestGrantSummaryTool(t *testing.T) {
	f := &fakeAPI{}
	s := connect(t, f)

	res := call(t, s, "circle_grant_summary", map[string]any{
		"scope":  "cohort-001",
		"quotes": []string{"I felt held."},
	})
	require.False(t, res.IsError, "%+v", res.Content)
	assert.Equal(t, "cohort-001", f.scope)
	assert.Equal(t, []string{"I felt held."}, f.quotes)

	out := decodeStructured[models.NarrativeResponse](t, res.StructuredContent)
	assert.Equal(t, "summary", out.Text)
}

func TestWorksheetGuidanceTool(t *testing.T) {
	f := &fakeAPI{}
	s := connect(t, f)

	res := call(t, s, "circle_worksheet_guidance", map[string]any{"week": 0})
	assert.True(t, res.IsError)

	res = call(t, s, "circle_worksheet_guidance", map[string]any{"week": 3, "question": "What did she teach you?"})
	require.False(t, res.IsError, "%+v", res.Content)
	assert.Equal(t, "What did she teach you?", f.question)
	out := decodeStructured[models.NarrativeResponse](t, res.StructuredContent)
	assert.True(t, out.Fallback)
}

func TestToolsAgainstAPI(t *testing.T) {
	db, err := store.Open(store.DriverPure, filepath.Join(t.TempDir(), "mcp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := portal.NewService(db, narrative.NewWriter(narrative.Disabled{}, time.Second, logger), logger)
	d, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), svc.Stores(), d, time.Now())
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewRouter(svc, "key", logger))
	t.Cleanup(srv.Close)

	s := connect(t, client.New(srv.URL, models.RoleFacilitator, client.WithAPIKey("key")))

	res := call(t, s, "circle_directory", map[string]any{"cohort_id": "cohort-001"})
	require.False(t, res.IsError, "%+v", res.Content)
	dir := decodeStructured[DirectoryResult](t, res.StructuredContent)
	assert.Len(t, dir.Participants, 6)

	res = call(t, s, "circle_report", map[string]any{"scope": "cohort-001"})
	require.False(t, res.IsError, "%+v", res.Content)
	rep := decodeStructured[models.CohortReport](t, res.StructuredContent)
	assert.Equal(t, 33, rep.CompletionRatePercent)

	res = call(t, s, "circle_grant_summary", map[string]any{})
	require.False(t, res.IsError, "%+v", res.Content)
	sum := decodeStructured[models.NarrativeResponse](t, res.StructuredContent)
	assert.True(t, sum.Fallback)
}
