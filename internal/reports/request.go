package reports

import (
	"fmt"
	"strconv"
	"strings"

	"rendiconto/internal/core"
)

// Request describes one report to generate. Period is used by profit-loss and
// cash-flow reports, AsOf by balance sheets.
type Request struct {
	Type            core.ReportType `json:"reportType"`
	CompanyID       string          `json:"companyId"`
	Period          core.Period     `json:"period"`
	AsOf            core.Date       `json:"asOfDate"`
	CompareLastYear bool            `json:"compareLastYear,omitempty"`
}

// Validate checks the preconditions of the requested report type.
func (r Request) Validate() error {
	if strings.TrimSpace(r.CompanyID) == "" {
		return ErrMissingCompany
	}
	switch r.Type {
	case core.BalanceSheetReport:
		if r.AsOf.IsZero() {
			return ErrMissingAsOf
		}
		return nil
	case core.ProfitLossReport, core.CashFlowReport:
		return r.Period.Validate()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportType, r.Type)
	}
}

// Key identifies the request for caching. Keys start with the company ID so
// that a company's entries can be dropped together.
func (r Request) Key() string {
	parts := []string{r.CompanyID, string(r.Type)}
	switch r.Type {
	case core.BalanceSheetReport:
		parts = append(parts, r.AsOf.String())
	default:
		parts = append(parts, r.Period.Start.String(), r.Period.End.String())
	}
	if r.Type == core.ProfitLossReport {
		parts = append(parts, strconv.FormatBool(r.CompareLastYear))
	}
	return strings.Join(parts, "|")
}

// CompanyKeyPrefix is the cache key prefix shared by all of a company's requests.
func CompanyKeyPrefix(companyID string) string {
	return companyID + "|"
}
