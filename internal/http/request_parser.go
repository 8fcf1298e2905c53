package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rendiconto/internal/core"
	"rendiconto/internal/reports"
)

const (
	maxBodyBytes = 1 << 20

	defaultListLimit = 20
	maxListLimit     = 100
)

// ErrInvalidParameter marks malformed request input.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParseReportQuery builds a report request from query parameters:
// company, start, end, asOf and compareLastYear. Only malformed values are
// rejected here; missing ones are left for Request.Validate.
func ParseReportQuery(typ core.ReportType, q url.Values) (reports.Request, error) {
	req := reports.Request{
		Type:      typ,
		CompanyID: sanitizeInput(q.Get("company")),
	}

	var err error
	if req.Period.Start, err = optionalDate(q, "start"); err != nil {
		return req, err
	}
	if req.Period.End, err = optionalDate(q, "end"); err != nil {
		return req, err
	}
	if req.AsOf, err = optionalDate(q, "asOf"); err != nil {
		return req, err
	}
	if req.CompareLastYear, err = optionalBool(q, "compareLastYear"); err != nil {
		return req, err
	}
	return req, nil
}

func optionalDate(q url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w %s: expected YYYY-MM-DD, got %q", ErrInvalidParameter, key, v)
	}
	return d, nil
}

func optionalBool(q url.Values, key string) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w %s: %q is not a boolean", ErrInvalidParameter, key, v)
	}
	return b, nil
}

// ParseLimit reads the list limit, defaulting to 20 and capped at 100.
func ParseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w limit: %q is not a positive number", ErrInvalidParameter, v)
	}
	return min(n, maxListLimit), nil
}

// DecodeJSON decodes a JSON request body into v, rejecting unknown fields,
// trailing data and bodies over 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", ErrInvalidParameter)
		}
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", ErrInvalidParameter)
	}
	return nil
}

// scheduleBody is the JSON accepted by POST /api/schedules.
type scheduleBody struct {
	CompanyID       string          `json:"companyId"`
	ReportType      core.ReportType `json:"reportType"`
	Every           core.Frequency  `json:"every"`
	StartDate       core.Date       `json:"startDate"`
	EndDate         core.Date       `json:"endDate"`
	CompareLastYear bool            `json:"compareLastYear"`
}

func (b scheduleBody) schedule() core.ReportSchedule {
	return core.ReportSchedule{
		CompanyID:       sanitizeInput(b.CompanyID),
		ReportType:      b.ReportType,
		Every:           b.Every,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		CompareLastYear: b.CompareLastYear,
	}
}
