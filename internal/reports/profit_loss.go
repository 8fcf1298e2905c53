package reports

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"rendiconto/internal/core"
)

// ProfitLoss builds the income statement of period. With compareLastYear the
// same period one year earlier is read concurrently and growth figures are
// attached as the report's Comparison.
func (e *Engine) ProfitLoss(ctx context.Context, companyID string, period core.Period, compareLastYear bool) (*Report, error) {
	if err := checkPeriod(companyID, period); err != nil {
		return nil, err
	}

	var current, prior []core.Transaction
	prevPeriod := ShiftPeriodOneYear(period)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = e.periodTransactions(gctx, core.ProfitLossReport, companyID, period)
		return err
	})
	if compareLastYear {
		g.Go(func() error {
			var err error
			prior, err = e.periodTransactions(gctx, core.ProfitLossReport, companyID, prevPeriod)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := Aggregate(current)
	e.logSkipped(ctx, core.ProfitLossReport, companyID, agg.Skipped)

	rep := e.newReport(core.ProfitLossReport, companyID)
	rep.Period = &period
	rep.Data = newProfitLoss(agg)

	if compareLastYear {
		base := Aggregate(prior)
		e.logSkipped(ctx, core.ProfitLossReport, companyID, base.Skipped)
		rep.Comparison = &Comparison{
			Period:        prevPeriod,
			TotalIncome:   base.TotalIncome,
			TotalExpenses: base.TotalExpenses,
			NetProfit:     base.NetProfit(),
			IncomeGrowth:  NewGrowth(agg.TotalIncome, base.TotalIncome, false),
			ExpenseGrowth: NewGrowth(agg.TotalExpenses, base.TotalExpenses, true),
			ProfitGrowth:  NewGrowth(agg.NetProfit(), base.NetProfit(), false),
		}
	}
	return rep, nil
}

func newProfitLoss(agg Aggregation) ProfitLoss {
	pl := ProfitLoss{
		IncomeByCategory:  agg.Income,
		ExpenseByCategory: agg.Expense,
		TotalIncome:       agg.TotalIncome,
		TotalExpenses:     agg.TotalExpenses,
		NetProfit:         agg.NetProfit(),
		ProfitMargin:      decimal.Zero,
		Skipped:           agg.Skipped,
	}
	if agg.TotalIncome.IsPositive() {
		pl.ProfitMargin = percentOf(pl.NetProfit, agg.TotalIncome)
	}
	return pl
}
