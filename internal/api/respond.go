package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/portal"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func writeFieldError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg, Field: field})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// writeServiceError maps portal errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *portal.ValidationError
	switch {
	case errors.As(err, &ve):
		writeFieldError(w, http.StatusBadRequest, ve.Error(), ve.Field)
	case errors.Is(err, portal.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, portal.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden for role "+string(GetActor(r).Role))
	default:
		logger.Error("request failed", "path", r.URL.Path, "request_id", GetRequestID(r), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// weekParam parses the {week} URL parameter.
func weekParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "week")
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &portal.ValidationError{Field: "week", Message: fmt.Sprintf("%q is not a number", raw)}
	}
	return week, nil
}
