package reports

import (
	"context"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
)

// CashFlow reconciles the opening balance (every transaction before the
// period) with the closing balance through the period's activity. The ledger
// is read once, up to the end of the period.
func (e *Engine) CashFlow(ctx context.Context, companyID string, period core.Period) (*Report, error) {
	if err := checkPeriod(companyID, period); err != nil {
		return nil, err
	}
	if e.txs == nil {
		return nil, newGenerationError("read transactions", core.CashFlowReport, companyID, errNoReader)
	}
	// TODO: replace the full-history read with a per-company running balance checkpoint.
	txs, err := e.txs.Transactions(ctx, companyID, ledger.Until(period.End))
	if err != nil {
		return nil, newGenerationError("read transactions", core.CashFlowReport, companyID, err)
	}

	cf := buildCashFlow(txs, period)
	e.logSkipped(ctx, core.CashFlowReport, companyID, cf.Skipped)

	rep := e.newReport(core.CashFlowReport, companyID)
	rep.Period = &period
	rep.Data = cf
	return rep, nil
}

func buildCashFlow(txs []core.Transaction, period core.Period) CashFlow {
	keys := period.MonthKeys()
	months := make(map[string]*MonthFlow, len(keys))
	flow := make([]MonthFlow, len(keys))
	for i, k := range keys {
		flow[i].Month = k
		months[k] = &flow[i]
	}

	var (
		cf              CashFlow
		inflow, outflow core.Money
		// closing mirrors OpeningBalance + Operating.Net and must stay in range
		closing core.Money
	)
	for _, tx := range txs {
		tx.Date = tx.Date.Calendar()
		if tx.Date.After(period.End) {
			continue
		}
		if !usable(tx) {
			cf.Skipped++
			continue
		}
		nextClosing, ok := closing.CheckedAdd(tx.Signed())
		if !ok {
			cf.Skipped++
			continue
		}
		if tx.Date.Before(period.Start) {
			opening, ok := cf.OpeningBalance.CheckedAdd(tx.Signed())
			if !ok {
				cf.Skipped++
				continue
			}
			cf.OpeningBalance, closing = opening, nextClosing
			continue
		}
		m := months[tx.Date.MonthKey()]
		if m == nil {
			// outside every bucket the period spans
			cf.Skipped++
			continue
		}
		if tx.Type == core.Income {
			next, ok := inflow.CheckedAdd(tx.Amount)
			if !ok {
				cf.Skipped++
				continue
			}
			inflow = next
			m.Inflow = m.Inflow.Add(tx.Amount)
		} else {
			next, ok := outflow.CheckedAdd(tx.Amount)
			if !ok {
				cf.Skipped++
				continue
			}
			outflow = next
			m.Outflow = m.Outflow.Add(tx.Amount)
		}
		closing = nextClosing
	}
	for i := range flow {
		flow[i].Net = flow[i].Inflow.Sub(flow[i].Outflow)
	}

	cf.Operating = newActivity(inflow, outflow)
	cf.Investing = newActivity(core.Money{}, core.Money{})
	cf.Financing = newActivity(core.Money{}, core.Money{})
	cf.ClosingBalance = cf.OpeningBalance.
		Add(cf.Operating.Net).
		Add(cf.Investing.Net).
		Add(cf.Financing.Net)
	cf.MonthlyFlow = flow
	return cf
}
