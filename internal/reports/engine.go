package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
)

var errNoReader = errors.New("no reader configured")

// Engine builds financial statements from a ledger and a set of accounts.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	txs      ledger.TransactionReader
	accounts ledger.AccountReader
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Engine)

// WithLogger sets the logger used for skipped-record warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the source of GeneratedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(txs ledger.TransactionReader, accounts ledger.AccountReader, opts ...Option) *Engine {
	e := &Engine{
		txs:      txs,
		accounts: accounts,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate dispatches req to the matching generator.
func (e *Engine) Generate(ctx context.Context, req Request) (*Report, error) {
	switch req.Type {
	case core.ProfitLossReport:
		return e.ProfitLoss(ctx, req.CompanyID, req.Period, req.CompareLastYear)
	case core.BalanceSheetReport:
		return e.BalanceSheet(ctx, req.CompanyID, req.AsOf)
	case core.CashFlowReport:
		return e.CashFlow(ctx, req.CompanyID, req.Period)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, req.Type)
	}
}

func checkPeriod(companyID string, p core.Period) error {
	if strings.TrimSpace(companyID) == "" {
		return ErrMissingCompany
	}
	return p.Validate()
}

// periodTransactions reads the transactions of p and drops anything the reader
// returned outside of it. Dates are reduced to calendar days first.
func (e *Engine) periodTransactions(ctx context.Context, typ core.ReportType, companyID string, p core.Period) ([]core.Transaction, error) {
	if e.txs == nil {
		return nil, newGenerationError("read transactions", typ, companyID, errNoReader)
	}
	txs, err := e.txs.Transactions(ctx, companyID, ledger.InPeriod(p))
	if err != nil {
		return nil, newGenerationError("read transactions", typ, companyID, err)
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		tx.Date = tx.Date.Calendar()
		if p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (e *Engine) logSkipped(ctx context.Context, typ core.ReportType, companyID string, skipped int) {
	if skipped == 0 {
		return
	}
	e.logger.WarnContext(ctx, "Skipped unusable transactions",
		"report_type", string(typ),
		"company_id", companyID,
		"skipped", skipped)
}

func (e *Engine) newReport(typ core.ReportType, companyID string) *Report {
	return &Report{
		Type:        typ,
		CompanyID:   companyID,
		GeneratedAt: e.now().UTC(),
	}
}
