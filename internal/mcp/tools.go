package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	callTimeout      = 15 * time.Second
	narrativeTimeout = 90 * time.Second
)

func registerTools(s *mcp.Server, api API, logger *slog.Logger) {
	mcp.AddTool(s, DirectoryTool(), DirectoryHandler(api, logger))
	mcp.AddTool(s, ScheduleTool(), ScheduleHandler(api, logger))
	mcp.AddTool(s, SessionLogsTool(), SessionLogsHandler(api, logger))
	mcp.AddTool(s, ReportTool(), ReportHandler(api, logger))
	mcp.AddTool(s, GrantSummaryTool(), GrantSummaryHandler(api, logger))
	mcp.AddTool(s, WorksheetGuidanceTool(), WorksheetGuidanceHandler(api, logger))
}

// DirectoryInput filters the participant directory.
type DirectoryInput struct {
	Search   string `json:"search,omitempty" jsonschema:"case-insensitive match on name or email"`
	Status   string `json:"status,omitempty" jsonschema:"Active, Completed, Withdrawn or All"`
	CohortID string `json:"cohort_id,omitempty" jsonschema:"restrict to one cohort"`
}

// DirectoryResult lists matching participants.
type DirectoryResult struct {
	Participants []models.Participant `json:"participants"`
	Total        int                  `json:"total"`
}

func DirectoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "circle_directory",
		Description: "Search the participant directory across cohorts. Returns roster entries with status and the number of entries that matched.",
	}
}

func DirectoryHandler(api API, logger *slog.Logger) mcp.ToolHandlerFor[DirectoryInput, DirectoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DirectoryInput) (*mcp.CallToolResult, DirectoryResult, error) {
		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		resp, err := api.Directory(ctx, models.DirectoryQuery{
			Search:   in.Search,
			Status:   in.Status,
			CohortID: in.CohortID,
		})
		if err != nil {
			return nil, DirectoryResult{}, toolError(logger, "circle_directory", err)
		}
		out := DirectoryResult{Participants: resp.Participants, Total: resp.Total}
		if out.Participants == nil {
			out.Participants = []models.Participant{}
		}
		return nil, out, nil
	}
}

// ScheduleInput names the cohort whose schedule to read.
type ScheduleInput struct {
	CohortID string `json:"cohort_id" jsonschema:"cohort id, for example cohort-001"`
}

// ScheduleResult holds the four weekly sessions.
type ScheduleResult struct {
	Sessions []models.Session `json:"sessions"`
}

func ScheduleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "circle_schedule",
		Description: "Read the four-week session schedule of a cohort, including topics, date-times and meeting links.",
	}
}

func ScheduleHandler(api API, logger *slog.Logger) mcp.ToolHandlerFor[ScheduleInput, ScheduleResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ScheduleInput) (*mcp.CallToolResult, ScheduleResult, error) {
		cohortID := strings.TrimSpace(in.CohortID)
		if cohortID == "" {
			return nil, ScheduleResult{}, fmt.Errorf("cohort_id is required")
		}

		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		sessions, err := api.Schedule(ctx, cohortID)
		if err != nil {
			return nil, ScheduleResult{}, toolError(logger, "circle_schedule", err)
		}
		if sessions == nil {
			sessions = []models.Session{}
		}
		return nil, ScheduleResult{Sessions: sessions}, nil
	}
}

// SessionLogsInput filters facilitator session logs.
type SessionLogsInput struct {
	CohortID string `json:"cohort_id,omitempty" jsonschema:"restrict to one cohort"`
	Week     int    `json:"week,omitempty" jsonschema:"restrict to one program week, 1 to 4"`
}

// SessionLogsResult lists logs in submission order.
type SessionLogsResult struct {
	Logs []models.SessionLog `json:"logs"`
}

func SessionLogsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "circle_session_logs",
		Description: "List facilitator session logs, optionally narrowed to a cohort and week. Logs are append-only and returned oldest first.",
	}
}

func SessionLogsHandler(api API, logger *slog.Logger) mcp.ToolHandlerFor[SessionLogsInput, SessionLogsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SessionLogsInput) (*mcp.CallToolResult, SessionLogsResult, error) {
		if in.Week != 0 && !models.ValidWeek(in.Week) {
			return nil, SessionLogsResult{}, fmt.Errorf("week must be between 1 and %d", models.ProgramWeeks)
		}

		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		logs, err := api.Logs(ctx, in.CohortID, in.Week)
		if err != nil {
			return nil, SessionLogsResult{}, toolError(logger, "circle_session_logs", err)
		}
		if logs == nil {
			logs = []models.SessionLog{}
		}
		return nil, SessionLogsResult{Logs: logs}, nil
	}
}

// ReportInput selects a cohort or the whole program.
type ReportInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"cohort id or all, defaults to all"`
}

func ReportTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "circle_report",
		Description: "Compute the outcome report for a cohort or the whole program: completion rate, pre and post averages, and deltas.",
	}
}

func ReportHandler(api API, logger *slog.Logger) mcp.ToolHandlerFor[ReportInput, models.CohortReport] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ReportInput) (*mcp.CallToolResult, models.CohortReport, error) {
		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		report, err := api.Report(ctx, scopeOrAll(in.Scope))
		if err != nil {
			return nil, models.CohortReport{}, toolError(logger, "circle_report", err)
		}
		return nil, *report, nil
	}
}

// GrantSummaryInput selects the report scope and optional explicit quotes.
type GrantSummaryInput struct {
	Scope  string   `json:"scope,omitempty" jsonschema:"cohort id or all, defaults to all"`
	Quotes []string `json:"quotes,omitempty" jsonschema:"quotes to include, defaults to consented reflections"`
}

func GrantSummaryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "circle_grant_summary",
		Description: "Generate and store a grant narrative for a report scope. Uses consented, de-identified participant quotes unless quotes are given.",
	}
}

func GrantSummaryHandler(api API, logger *slog.Logger) mcp.ToolHandlerFor[GrantSummaryInput, models.NarrativeResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in GrantSummaryInput) (*mcp.CallToolResult, models.NarrativeResponse, error) {
		ctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
		defer cancel()

		resp, err := api.GrantSummary(ctx, scopeOrAll(in.Scope), in.Quotes)
		if err != nil {
			return nil, models.NarrativeResponse{}, toolError(logger, "circle_grant_summary", err)
		}
		return nil, *resp, nil
	}
}

// WorksheetGuidanceInput asks for reflection prompts for one week.
type WorksheetGuidanceInput struct {
	Week     int    `json:"week" jsonschema:"program week, 1 to 4"`
	Question string `json:"question,omitempty" jsonschema:"the worksheet question, defaults to the week topic"`
}

func WorksheetGuidanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "circle_worksheet_guidance",
		Description: "Offer gentle reflection prompts for a worksheet week. Falls back to a fixed encouragement when no model is available.",
	}
}

func WorksheetGuidanceHandler(api API, logger *slog.Logger) mcp.ToolHandlerFor[WorksheetGuidanceInput, models.NarrativeResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WorksheetGuidanceInput) (*mcp.CallToolResult, models.NarrativeResponse, error) {
		if !models.ValidWeek(in.Week) {
			return nil, models.NarrativeResponse{}, fmt.Errorf("week must be between 1 and %d", models.ProgramWeeks)
		}

		ctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
		defer cancel()

		resp, err := api.Guidance(ctx, in.Week, in.Question)
		if err != nil {
			return nil, models.NarrativeResponse{}, toolError(logger, "circle_worksheet_guidance", err)
		}
		return nil, *resp, nil
	}
}

func scopeOrAll(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return models.ScopeAll
	}
	return scope
}

func toolError(logger *slog.Logger, tool string, err error) error {
	logger.Warn("tool call failed", "tool", tool, "error", err)
	return fmt.Errorf("%s failed: %w", tool, err)
}
