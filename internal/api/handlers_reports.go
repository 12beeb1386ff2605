package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/portal"
)

type ReportHandler struct {
	svc    *portal.Service
	logger *slog.Logger
}

func NewReportHandler(svc *portal.Service, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// Get handles GET /reports/{scope}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), GetActor(r), chi.URLParam(r, "scope"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Summary handles POST /reports/{scope}/summary. The body is optional.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.svc.GrantSummary(r.Context(), GetActor(r), chi.URLParam(r, "scope"), req.Quotes)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summaries handles GET /reports/{scope}/summaries
func (h *ReportHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Summaries(r.Context(), GetActor(r), chi.URLParam(r, "scope"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": list})
}
