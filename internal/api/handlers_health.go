package api

import (
	"log/slog"
	"net/http"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/portal"
)

type HealthHandler struct {
	svc *portal.Service
}

func NewHealthHandler(svc *portal.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.Health(r.Context())
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type IdentityHandler struct {
	svc    *portal.Service
	logger *slog.Logger
}

func NewIdentityHandler(svc *portal.Service, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{svc: svc, logger: logger}
}

// Identify handles POST /identity
func (h *IdentityHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req models.IdentifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	u, err := h.svc.Identify(r.Context(), req.Role)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Overview handles GET /overview
func (h *IdentityHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context(), GetActor(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}
