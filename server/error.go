package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/recurrence"
	"github.com/cyp0633/repeatcal/series"
	"github.com/cyp0633/repeatcal/storage"
)

// HTTPError is an error with the status code it is reported under
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, series.ErrSeriesNotFound):
		return http.StatusNotFound
	case errors.Is(err, event.ErrInvalidEvent),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, recurrence.ErrEndBeforeStart),
		errors.Is(err, recurrence.ErrInvalidInterval),
		errors.Is(err, recurrence.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	message := err.Error()
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		message = httpErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("error response", "status", status, "error", err)
	} else {
		s.logger.Warn("error response", "status", status, "error", err)
	}

	s.respondJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		w.Header().Set(headerContentType, mimeTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set(headerContentType, mimeTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &HTTPError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	return nil
}
