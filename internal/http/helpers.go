package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rendiconto/internal/log"
	"rendiconto/internal/middleware/trace"
	"rendiconto/internal/reports"
	"rendiconto/internal/services"
	"rendiconto/internal/storage"
)

// statusForError maps service errors onto HTTP status codes. Input problems
// are 4xx, reader failures 502 and reader timeouts 504.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParameter), reports.IsPrecondition(err):
		return http.StatusBadRequest
	case errors.Is(err, reports.ErrNotFound), errors.Is(err, storage.ErrScheduleNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoStore):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, &reports.GenerationError{}):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with its JSON error body. Server-side
// failures are reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	requestID := trace.GetRequestID(r.Context())

	msg := err.Error()
	switch status {
	case http.StatusBadGateway:
		msg = "ledger unavailable"
	case http.StatusGatewayTimeout:
		msg = "ledger did not answer in time"
	case http.StatusInternalServerError:
		msg = http.StatusText(status)
	}

	logger := log.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldError, err.Error())
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldError, err.Error())
	}

	ErrorResponse(status, msg, requestID).Write(w)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
