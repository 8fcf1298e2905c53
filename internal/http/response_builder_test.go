package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"rendiconto/internal/core"
	"rendiconto/internal/middleware/trace"
	"rendiconto/internal/reports"
	"rendiconto/internal/services"
	"rendiconto/internal/storage"
)

func TestResponseBuilder(t *testing.T) {
	tests := []struct {
		name        string
		builder     *ResponseBuilder
		wantStatus  int
		wantBody    string
		wantHeaders map[string]string
	}{
		{
			name:       "default status with json",
			builder:    NewResponse().JSON(map[string]string{"status": "ok"}),
			wantStatus: http.StatusOK,
			wantBody:   "{\"status\":\"ok\"}\n",
			wantHeaders: map[string]string{
				"Content-Type": "application/json; charset=utf-8",
			},
		},
		{
			name:       "no content",
			builder:    NewResponse().Status(http.StatusNoContent),
			wantStatus: http.StatusNoContent,
			wantBody:   "",
		},
		{
			name:       "custom header",
			builder:    NewResponse().Status(http.StatusCreated).Header("Location", "/api/reports/r1").JSON(map[string]string{"id": "r1"}),
			wantStatus: http.StatusCreated,
			wantBody:   "{\"id\":\"r1\"}\n",
			wantHeaders: map[string]string{
				"Location": "/api/reports/r1",
			},
		},
		{
			name:       "error body",
			builder:    ErrorResponse(http.StatusBadGateway, "ledger unavailable", "req_1"),
			wantStatus: http.StatusBadGateway,
			wantBody:   "{\"error\":\"ledger unavailable\",\"requestId\":\"req_1\"}\n",
		},
		{
			name:       "rate limited",
			builder:    TooManyRequestsError(),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   "{\"error\":\"rate limit exceeded, try again later\"}\n",
		},
		{
			name:       "unencodable payload",
			builder:    NewResponse().JSON(math.Inf(1)),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.builder.Write(rr)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusNoContent && rr.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", rr.Body.String())
			}
			for name, want := range tt.wantHeaders {
				if got := rr.Header().Get(name); got != want {
					t.Errorf("header %s = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	genErr := &reports.GenerationError{Op: "read accounts", ReportType: core.BalanceSheetReport, CompanyID: "acme", Err: errors.New("boom")}
	timeout := &reports.GenerationError{Op: "read accounts", Err: context.DeadlineExceeded}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid parameter", fmt.Errorf("%w: limit", ErrInvalidParameter), http.StatusBadRequest},
		{"missing company", reports.ErrMissingCompany, http.StatusBadRequest},
		{"invalid period", fmt.Errorf("%w: inverted", reports.ErrInvalidPeriod), http.StatusBadRequest},
		{"unknown type", reports.ErrUnknownReportType, http.StatusBadRequest},
		{"report not found", reports.ErrNotFound, http.StatusNotFound},
		{"schedule not found", storage.ErrScheduleNotFound, http.StatusNotFound},
		{"no store", services.ErrNoStore, http.StatusNotImplemented},
		{"reader failure", genErr, http.StatusBadGateway},
		{"reader timeout", timeout, http.StatusGatewayTimeout},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/reports/x", nil)
	r = r.WithContext(context.WithValue(r.Context(), trace.RequestIDKey, "req_abc"))
	rr := httptest.NewRecorder()

	writeError(rr, r, "read", errors.New("sqlite: disk I/O error"))

	var body ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusInternalServerError || body.Error != "Internal Server Error" || body.RequestID != "req_abc" {
		t.Errorf("got %d %+v", rr.Code, body)
	}
}
