package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/portal"
)

type CohortHandler struct {
	svc    *portal.Service
	logger *slog.Logger
}

func NewCohortHandler(svc *portal.Service, logger *slog.Logger) *CohortHandler {
	return &CohortHandler{svc: svc, logger: logger}
}

// List handles GET /cohorts
func (h *CohortHandler) List(w http.ResponseWriter, r *http.Request) {
	cohorts, err := h.svc.ListCohorts(r.Context(), GetActor(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cohorts": cohorts})
}

// Create handles POST /cohorts
func (h *CohortHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCohortRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	c, err := h.svc.CreateCohort(r.Context(), GetActor(r), req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Get handles GET /cohorts/{id}
func (h *CohortHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Cohort(r.Context(), GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Enroll handles POST /cohorts/{id}/participants
func (h *CohortHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.svc.EnrollParticipant(r.Context(), GetActor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateParticipant handles PATCH /participants/{id}
func (h *CohortHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.svc.SetParticipantStatus(r.Context(), GetActor(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Directory handles GET /directory
func (h *CohortHandler) Directory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.svc.Directory(r.Context(), GetActor(r), models.DirectoryQuery{
		Search:   q.Get("q"),
		Status:   q.Get("status"),
		CohortID: q.Get("cohort_id"),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Schedule handles GET /cohorts/{id}/schedule
func (h *CohortHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.Schedule(r.Context(), GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// ScheduleSession handles PUT /cohorts/{id}/schedule/{week}
func (h *CohortHandler) ScheduleSession(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	var req models.ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sess, err := h.svc.ScheduleSession(r.Context(), GetActor(r), chi.URLParam(r, "id"), week, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// ListLogs handles GET /logs
func (h *CohortHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	week := 0
	if raw := q.Get("week"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeFieldError(w, http.StatusBadRequest, "week must be a number", "week")
			return
		}
		week = v
	}
	logs, err := h.svc.Logs(r.Context(), GetActor(r), q.Get("cohort_id"), week)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// SubmitLog handles POST /logs
func (h *CohortHandler) SubmitLog(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	l, err := h.svc.SubmitLog(r.Context(), GetActor(r), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
