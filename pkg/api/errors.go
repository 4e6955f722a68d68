package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/importer"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeServiceError maps a service error onto a status code. Bad input is 422, missing
// pools and rounds are 404, anything else is logged and reported as 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *engine.ValidationError
		notFoundErr   *engine.NotFoundError
		missingErr    *importer.MissingColumnsError
		rowErr        *importer.RowError
	)

	switch {
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error())
	case errors.As(err, &validationErr):
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", validationErr.Error())
	case errors.As(err, &missingErr), errors.As(err, &rowErr), errors.Is(err, importer.ErrNoRows):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_FILE", err.Error())
	default:
		s.logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
