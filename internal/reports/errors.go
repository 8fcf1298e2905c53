package reports

import (
	"errors"
	"fmt"

	"rendiconto/internal/core"
)

// Precondition errors, returned before any reader is called.
var (
	ErrMissingCompany = core.ErrMissingCompany
	ErrInvalidPeriod  = core.ErrInvalidPeriod

	// ErrMissingAsOf is returned when a balance sheet is requested without a date.
	ErrMissingAsOf = errors.New("missing as-of date")

	// ErrUnknownReportType is returned by Generate for types it cannot build.
	ErrUnknownReportType = errors.New("unknown report type")

	// ErrNotFound is returned by report stores for unknown IDs.
	ErrNotFound = errors.New("report not found")
)

// GenerationError reports a statement that could not be produced because a
// ledger or account read failed. No partial report accompanies it.
type GenerationError struct {
	// Op is the reader call that failed (e.g. "read transactions").
	Op string

	ReportType core.ReportType
	CompanyID  string

	// Err is the underlying error.
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("reports: %s %s for company %q: %v", e.ReportType, e.Op, e.CompanyID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is makes any *GenerationError match a bare &GenerationError{} target.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	return (t.ReportType == "" || t.ReportType == e.ReportType) &&
		(t.CompanyID == "" || t.CompanyID == e.CompanyID)
}

// IsPrecondition reports whether err was raised by input validation rather
// than by a reader.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrMissingCompany) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrMissingAsOf) ||
		errors.Is(err, ErrUnknownReportType)
}

func newGenerationError(op string, typ core.ReportType, companyID string, err error) error {
	return &GenerationError{Op: op, ReportType: typ, CompanyID: companyID, Err: err}
}
