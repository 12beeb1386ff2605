// Package client is a typed HTTP client for the circle API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iammorganparry/circle/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the circle API as one identity. It is safe for
// concurrent use; WithRole returns a copy for a different role.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	role       models.Role
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithUser(id string) Option {
	return func(c *Client) { c.userID = id }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL acting as role.
func New(baseURL string, role models.Role, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		role:    role,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Role returns the identity role sent with each request.
func (c *Client) Role() models.Role {
	return c.role
}

// WithRole returns a copy of the client acting as role.
func (c *Client) WithRole(role models.Role) *Client {
	cp := *c
	cp.role = role
	return &cp
}

// Do executes a request and unmarshals a JSON response into result.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.role != "" {
		req.Header.Set("X-Circle-Role", string(c.role))
	}
	if c.userID != "" {
		req.Header.Set("X-Circle-User", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var er models.ErrorResponse
		if json.Unmarshal(respBody, &er) == nil && er.Error != "" {
			apiErr.Message, apiErr.Field = er.Error, er.Field
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Identify signs in as the client's role.
func (c *Client) Identify(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.Do(ctx, http.MethodPost, "/identity", models.IdentifyRequest{Role: c.role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Overview(ctx context.Context) (*models.Overview, error) {
	var out models.Overview
	if err := c.Do(ctx, http.MethodGet, "/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCohorts(ctx context.Context) ([]models.Cohort, error) {
	var out struct {
		Cohorts []models.Cohort `json:"cohorts"`
	}
	if err := c.Do(ctx, http.MethodGet, "/cohorts", nil, &out); err != nil {
		return nil, err
	}
	return out.Cohorts, nil
}

func (c *Client) CreateCohort(ctx context.Context, name string) (*models.Cohort, error) {
	var out models.Cohort
	if err := c.Do(ctx, http.MethodPost, "/cohorts", models.CreateCohortRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cohort(ctx context.Context, id string) (*models.CohortDetail, error) {
	var out models.CohortDetail
	if err := c.Do(ctx, http.MethodGet, "/cohorts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Enroll(ctx context.Context, cohortID string, req models.EnrollRequest) (*models.Participant, error) {
	var out models.Participant
	if err := c.Do(ctx, http.MethodPost, "/cohorts/"+url.PathEscape(cohortID)+"/participants", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetParticipantStatus(ctx context.Context, id string, status models.ParticipantStatus) (*models.Participant, error) {
	var out models.Participant
	body := models.UpdateParticipantRequest{Status: status}
	if err := c.Do(ctx, http.MethodPatch, "/participants/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Directory(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryResponse, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.CohortID != "" {
		v.Set("cohort_id", q.CohortID)
	}
	path := "/directory"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out models.DirectoryResponse
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Schedule(ctx context.Context, cohortID string) ([]models.Session, error) {
	var out struct {
		Sessions []models.Session `json:"sessions"`
	}
	if err := c.Do(ctx, http.MethodGet, "/cohorts/"+url.PathEscape(cohortID)+"/schedule", nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

func (c *Client) ScheduleSession(ctx context.Context, cohortID string, week int, req models.ScheduleRequest) (*models.Session, error) {
	var out models.Session
	path := "/cohorts/" + url.PathEscape(cohortID) + "/schedule/" + strconv.Itoa(week)
	if err := c.Do(ctx, http.MethodPut, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs lists session logs. Empty cohortID and zero week mean no filter.
func (c *Client) Logs(ctx context.Context, cohortID string, week int) ([]models.SessionLog, error) {
	v := url.Values{}
	if cohortID != "" {
		v.Set("cohort_id", cohortID)
	}
	if week != 0 {
		v.Set("week", strconv.Itoa(week))
	}
	path := "/logs"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out struct {
		Logs []models.SessionLog `json:"logs"`
	}
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

func (c *Client) SubmitLog(ctx context.Context, req models.SubmitLogRequest) (*models.SessionLog, error) {
	var out models.SessionLog
	if err := c.Do(ctx, http.MethodPost, "/logs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Report(ctx context.Context, scope string) (*models.CohortReport, error) {
	var out models.CohortReport
	if err := c.Do(ctx, http.MethodGet, "/reports/"+url.PathEscape(scope), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GrantSummary asks for a narrative. Nil quotes lets the server pick
// consented reflections.
func (c *Client) GrantSummary(ctx context.Context, scope string, quotes []string) (*models.NarrativeResponse, error) {
	var out models.NarrativeResponse
	path := "/reports/" + url.PathEscape(scope) + "/summary"
	if err := c.Do(ctx, http.MethodPost, path, models.SummaryRequest{Quotes: quotes}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summaries(ctx context.Context, scope string) ([]models.NarrativeSummary, error) {
	var out struct {
		Summaries []models.NarrativeSummary `json:"summaries"`
	}
	if err := c.Do(ctx, http.MethodGet, "/reports/"+url.PathEscape(scope)+"/summaries", nil, &out); err != nil {
		return nil, err
	}
	return out.Summaries, nil
}

// Intake returns the caller's intake, or nil when onboarding is not done.
func (c *Client) Intake(ctx context.Context) (*models.Intake, error) {
	var out models.Intake
	if err := c.Do(ctx, http.MethodGet, "/me/intake", nil, &out); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitIntake(ctx context.Context, req models.IntakeRequest) (*models.Intake, error) {
	var out models.Intake
	if err := c.Do(ctx, http.MethodPut, "/me/intake", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckIn returns the caller's closing check-in, or nil if none.
func (c *Client) CheckIn(ctx context.Context) (*models.ClosingCheckIn, error) {
	var out models.ClosingCheckIn
	if err := c.Do(ctx, http.MethodGet, "/me/checkin", nil, &out); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitCheckIn(ctx context.Context, req models.CheckInRequest) (*models.ClosingCheckIn, error) {
	var out models.ClosingCheckIn
	if err := c.Do(ctx, http.MethodPut, "/me/checkin", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Worksheets(ctx context.Context) ([]models.Worksheet, error) {
	var out struct {
		Worksheets []models.Worksheet `json:"worksheets"`
	}
	if err := c.Do(ctx, http.MethodGet, "/me/worksheets", nil, &out); err != nil {
		return nil, err
	}
	return out.Worksheets, nil
}

func (c *Client) SaveWorksheet(ctx context.Context, week int, req models.WorksheetRequest) (*models.Worksheet, error) {
	var out models.Worksheet
	if err := c.Do(ctx, http.MethodPut, "/me/worksheets/"+strconv.Itoa(week), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Guidance asks for reflection prompts. An empty question uses the week's
// topic.
func (c *Client) Guidance(ctx context.Context, week int, question string) (*models.NarrativeResponse, error) {
	var out models.NarrativeResponse
	path := "/me/worksheets/" + strconv.Itoa(week) + "/guidance"
	if err := c.Do(ctx, http.MethodPost, path, models.GuidanceRequest{Question: question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
