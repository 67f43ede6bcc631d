package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"job-assistant/internal/domain"
)

// errorBody is the error envelope: {"error":{"code","message","details"}}.
type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// jsonDecoder builds a strict decoder over the request body.
func jsonDecoder(r *http.Request) *json.Decoder {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorInfo{Code: code, Message: message}})
}

// writeDomainError maps domain sentinels onto HTTP statuses and stable
// error codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, domain.ErrPreconditionNotMet):
		writeError(w, http.StatusBadRequest, "PRECONDITION_NOT_MET", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrScrapeFailed):
		writeError(w, http.StatusBadGateway, "SCRAPE_FAILED", err.Error())
	case errors.Is(err, domain.ErrExtractionFailed):
		writeError(w, http.StatusBadGateway, "EXTRACTION_FAILED", err.Error())
	case errors.Is(err, domain.ErrUpstreamCall):
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
	default:
		slog.Error("internal error", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
