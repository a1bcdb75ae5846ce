package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starford/folio/internal/apperr"
)

const maxBody = 10 << 20

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeBody writes a rendered document or fragment.
func writeBody(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Debug("write body failed", slog.String("error", err.Error()))
	}
}

// writeError answers with the status mapped from err. Only unexpected
// errors are logged; their text stays out of the response.
func writeError(w http.ResponseWriter, op string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{Error: apperr.ErrNotFound.Error()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errResponse{Error: "request body too large"})
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidMode):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error()})
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "internal error"})
	}
}

// decodeJSON reads a size-limited JSON body into v. Unknown fields are an
// input error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}
