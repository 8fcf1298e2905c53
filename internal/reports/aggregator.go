package reports

import "rendiconto/internal/core"

// Aggregation is the category breakdown of a set of transactions. Totals are
// always the exact sum of their buckets.
type Aggregation struct {
	Income        []core.CategoryAmount
	Expense       []core.CategoryAmount
	TotalIncome   core.Money
	TotalExpenses core.Money
	// Skipped counts transactions with a negative amount or an unknown type,
	// and any whose amount would overflow its type's total.
	Skipped int
}

// Aggregate groups transactions by type and category. Blank categories land in
// the Uncategorized bucket and buckets are sorted by name.
func Aggregate(txs []core.Transaction) Aggregation {
	income := map[string]core.Money{}
	expense := map[string]core.Money{}
	var (
		agg    Aggregation
		totals = map[core.TransactionType]core.Money{}
	)
	for _, tx := range txs {
		if !usable(tx) {
			agg.Skipped++
			continue
		}
		// buckets never exceed their type's total, so only the total is checked
		total, ok := totals[tx.Type].CheckedAdd(tx.Amount)
		if !ok {
			agg.Skipped++
			continue
		}
		totals[tx.Type] = total
		cat := tx.CategoryOrDefault()
		switch tx.Type {
		case core.Income:
			income[cat] = income[cat].Add(tx.Amount)
		case core.Expense:
			expense[cat] = expense[cat].Add(tx.Amount)
		}
	}
	agg.Income = buckets(income)
	agg.Expense = buckets(expense)
	agg.TotalIncome = core.SumAmounts(agg.Income)
	agg.TotalExpenses = core.SumAmounts(agg.Expense)
	return agg
}

// NetProfit is income minus expenses.
func (a Aggregation) NetProfit() core.Money {
	return a.TotalIncome.Sub(a.TotalExpenses)
}

func buckets(m map[string]core.Money) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(m))
	for name, amt := range m {
		out = append(out, core.CategoryAmount{Name: name, Amount: amt})
	}
	core.SortByName(out)
	return out
}

func usable(tx core.Transaction) bool {
	return !tx.Amount.IsNegative() && tx.Type.IsValid()
}
