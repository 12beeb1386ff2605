package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/portal"
)

// MeHandler serves the participant's own records.
type MeHandler struct {
	svc    *portal.Service
	logger *slog.Logger
}

func NewMeHandler(svc *portal.Service, logger *slog.Logger) *MeHandler {
	return &MeHandler{svc: svc, logger: logger}
}

// GetIntake handles GET /me/intake
func (h *MeHandler) GetIntake(w http.ResponseWriter, r *http.Request) {
	in, err := h.svc.Intake(r.Context(), GetActor(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// PutIntake handles PUT /me/intake
func (h *MeHandler) PutIntake(w http.ResponseWriter, r *http.Request) {
	var req models.IntakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	in, err := h.svc.SubmitIntake(r.Context(), GetActor(r), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// GetCheckIn handles GET /me/checkin
func (h *MeHandler) GetCheckIn(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.CheckIn(r.Context(), GetActor(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// PutCheckIn handles PUT /me/checkin
func (h *MeHandler) PutCheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	c, err := h.svc.SubmitCheckIn(r.Context(), GetActor(r), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListWorksheets handles GET /me/worksheets
func (h *MeHandler) ListWorksheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.svc.Worksheets(r.Context(), GetActor(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"worksheets": sheets})
}

// PutWorksheet handles PUT /me/worksheets/{week}
func (h *MeHandler) PutWorksheet(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	var req models.WorksheetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ws, err := h.svc.SaveWorksheet(r.Context(), GetActor(r), week, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// Guidance handles POST /me/worksheets/{week}/guidance. The body is optional.
func (h *MeHandler) Guidance(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	var req models.GuidanceRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.svc.Guidance(r.Context(), GetActor(r), week, req.Question)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
