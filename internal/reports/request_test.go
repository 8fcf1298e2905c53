package reports

import (
	"errors"
	"strings"
	"testing"

	"rendiconto/internal/core"
)

func TestRequestValidate(t *testing.T) {
	jan := period("2025-01-01", "2025-01-31")
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"profit loss", Request{Type: core.ProfitLossReport, CompanyID: "acme", Period: jan}, nil},
		{"cash flow", Request{Type: core.CashFlowReport, CompanyID: "acme", Period: jan}, nil},
		{"balance sheet", Request{Type: core.BalanceSheetReport, CompanyID: "acme", AsOf: jan.End}, nil},
		{"blank company", Request{Type: core.ProfitLossReport, CompanyID: "  ", Period: jan}, ErrMissingCompany},
		{"inverted period", Request{Type: core.CashFlowReport, CompanyID: "acme", Period: core.Period{Start: jan.End, End: jan.Start}}, ErrInvalidPeriod},
		{"missing period", Request{Type: core.ProfitLossReport, CompanyID: "acme"}, ErrInvalidPeriod},
		{"missing as of", Request{Type: core.BalanceSheetReport, CompanyID: "acme"}, ErrMissingAsOf},
		{"unknown type", Request{Type: "trial-balance", CompanyID: "acme"}, ErrUnknownReportType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !IsPrecondition(err) {
				t.Fatalf("expected precondition error")
			}
		})
	}
}

func TestRequestKey(t *testing.T) {
	jan := period("2025-01-01", "2025-01-31")
	a := Request{Type: core.ProfitLossReport, CompanyID: "acme", Period: jan}
	b := a
	b.CompareLastYear = true
	if a.Key() == b.Key() {
		t.Fatalf("comparison flag must change the key")
	}
	if !strings.HasPrefix(a.Key(), CompanyKeyPrefix("acme")) {
		t.Fatalf("key %q must start with the company prefix", a.Key())
	}

	bs := Request{Type: core.BalanceSheetReport, CompanyID: "acme", AsOf: jan.End}
	if bs.Key() != "acme|balance-sheet|2025-01-31" {
		t.Fatalf("unexpected key %q", bs.Key())
	}
	// Period is irrelevant for balance sheets.
	bs2 := bs
	bs2.Period = jan
	if bs.Key() != bs2.Key() {
		t.Fatalf("balance sheet key must ignore the period")
	}
}
