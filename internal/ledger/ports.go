package ledger

import (
	"context"

	"rendiconto/internal/core"
)

// Ports for inbound ledger adapters. Implementations are read-only from the
// engine's point of view.
type (
	// TransactionReader returns the transactions of a company. Callers must
	// not assume any ordering of the result.
	TransactionReader interface {
		Transactions(ctx context.Context, companyID string, f Filter) ([]core.Transaction, error)
	}

	// AccountReader returns the current balance-bearing accounts of a company.
	AccountReader interface {
		Accounts(ctx context.Context, companyID string) ([]core.Account, error)
	}

	// Reader is implemented by backends that serve both.
	Reader interface {
		TransactionReader
		AccountReader
	}
)

// Filter narrows a transaction query. Zero values leave the bound open.
type Filter struct {
	Start core.Date            // inclusive
	End   core.Date            // inclusive
	Type  core.TransactionType // empty matches both types
}

// Until returns a filter for everything up to and including end.
func Until(end core.Date) Filter {
	return Filter{End: end}
}

// InPeriod returns a filter for the inclusive period.
func InPeriod(p core.Period) Filter {
	return Filter{Start: p.Start, End: p.End}
}

// Match reports whether the transaction satisfies the filter.
func (f Filter) Match(t core.Transaction) bool {
	if !f.Start.IsZero() && t.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && t.Date.After(f.End) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}
