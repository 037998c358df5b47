package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/modeler/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps err onto a status code. Unclassified errors are logged
// and reported as internal errors without detail.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case apperr.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case apperr.Is(err, apperr.ErrNameConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case apperr.Is(err, apperr.ErrInvalid),
		apperr.Is(err, apperr.ErrMissingColumn),
		apperr.Is(err, apperr.ErrUnresolvedParent):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
