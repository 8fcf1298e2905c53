package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
)

func profitLoss(t *testing.T, rep *Report) ProfitLoss {
	t.Helper()
	pl, ok := rep.Data.(ProfitLoss)
	if !ok {
		t.Fatalf("unexpected data %T", rep.Data)
	}
	return pl
}

func TestProfitLoss_SalesAndRent(t *testing.T) {
	l := &fakeLedger{txs: []core.Transaction{
		tx("2025-01-01", 100000, core.Income, "Sales"),
		tx("2025-01-15", 30000, core.Expense, "Rent"),
	}}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-01-01", "2025-01-31"), false)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	pl := profitLoss(t, rep)
	if pl.TotalIncome != core.Cents(100000) || pl.TotalExpenses != core.Cents(30000) || pl.NetProfit != core.Cents(70000) {
		t.Fatalf("unexpected totals: %+v", pl)
	}
	if !pl.ProfitMargin.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("ProfitMargin = %s, want 70", pl.ProfitMargin)
	}
	if rep.Comparison != nil {
		t.Fatalf("comparison not requested")
	}
	if rep.Period == nil || rep.Period.String() != "2025-01-01..2025-01-31" {
		t.Fatalf("unexpected period %v", rep.Period)
	}
	if len(l.filters) != 1 {
		t.Fatalf("expected one reader call, got %d", len(l.filters))
	}
}

func TestProfitLoss_Margin(t *testing.T) {
	tests := []struct {
		name string
		txs  []core.Transaction
		want string
	}{
		{"no transactions", nil, "0"},
		{"expenses only", []core.Transaction{tx("2025-01-02", 5000, core.Expense, "Rent")}, "0"},
		{"loss", []core.Transaction{
			tx("2025-01-02", 10000, core.Income, "Sales"),
			tx("2025-01-03", 30000, core.Expense, "Rent"),
		}, "-200"},
		{"repeating", []core.Transaction{
			tx("2025-01-02", 30000, core.Income, "Sales"),
			tx("2025-01-03", 10000, core.Expense, "Rent"),
		}, "66.67"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLedger{txs: tt.txs}
			rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-01-01", "2025-01-31"), false)
			if err != nil {
				t.Fatalf("ProfitLoss() error = %v", err)
			}
			pl := profitLoss(t, rep)
			if !pl.ProfitMargin.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("ProfitMargin = %s, want %s", pl.ProfitMargin, tt.want)
			}
			if pl.TotalIncome.Sub(pl.TotalExpenses) != pl.NetProfit {
				t.Fatalf("net profit identity broken: %+v", pl)
			}
		})
	}
}

func TestProfitLoss_PreconditionsBeforeIO(t *testing.T) {
	tests := []struct {
		name    string
		company string
		p       core.Period
		want    error
	}{
		{"blank company", "", period("2025-01-01", "2025-01-31"), ErrMissingCompany},
		{"inverted", "acme", period("2025-02-01", "2025-01-31"), ErrInvalidPeriod},
		{"zero period", "acme", core.Period{}, ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLedger{}
			_, err := newTestEngine(l).ProfitLoss(context.Background(), tt.company, tt.p, true)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if l.calls() != 0 {
				t.Fatalf("reader called %d times before validation", l.calls())
			}
		})
	}
}

func TestProfitLoss_RefiltersReaderOutput(t *testing.T) {
	l := &fakeLedger{
		ignoreFilter: true,
		txs: []core.Transaction{
			tx("2024-12-31", 99900, core.Income, "Sales"),
			tx("2025-01-10", 10000, core.Income, "Sales"),
			tx("2025-02-01", 88800, core.Expense, "Rent"),
		},
	}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-01-01", "2025-01-31"), false)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	pl := profitLoss(t, rep)
	if pl.TotalIncome != core.Cents(10000) || !pl.TotalExpenses.IsZero() {
		t.Fatalf("out-of-period rows leaked: %+v", pl)
	}
}

func TestProfitLoss_ComparisonWithEmptyBaseline(t *testing.T) {
	l := &fakeLedger{txs: []core.Transaction{
		tx("2025-03-10", 50000, core.Income, "Sales"),
	}}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-03-01", "2025-03-31"), true)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	c := rep.Comparison
	if c == nil {
		t.Fatal("expected comparison")
	}
	if !c.TotalIncome.IsZero() {
		t.Fatalf("baseline income = %s, want 0", c.TotalIncome)
	}
	for name, g := range map[string]Growth{"income": c.IncomeGrowth, "expense": c.ExpenseGrowth, "profit": c.ProfitGrowth} {
		if !g.Percent.IsZero() {
			t.Errorf("%s growth = %s, want 0", name, g.Percent)
		}
	}
	if c.Period.String() != "2024-03-01..2024-03-31" {
		t.Fatalf("unexpected comparison period %s", c.Period)
	}
}

func TestProfitLoss_ComparisonGrowth(t *testing.T) {
	l := &fakeLedger{txs: []core.Transaction{
		tx("2024-02-05", 80000, core.Income, "Sales"),
		tx("2024-02-29", 40000, core.Expense, "Rent"),
		tx("2025-02-05", 100000, core.Income, "Sales"),
		tx("2025-02-20", 30000, core.Expense, "Rent"),
	}}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-02-01", "2025-02-28"), true)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	c := rep.Comparison
	// Prior Feb 1..Feb 28 2024 excludes the Feb 29 rent.
	if c.TotalIncome != core.Cents(80000) || !c.TotalExpenses.IsZero() {
		t.Fatalf("unexpected baseline: %+v", c)
	}
	if !c.IncomeGrowth.Percent.Equal(decimal.NewFromInt(25)) || c.IncomeGrowth.Direction != Up || !c.IncomeGrowth.Favorable {
		t.Fatalf("unexpected income growth %+v", c.IncomeGrowth)
	}
	if !c.ExpenseGrowth.Percent.IsZero() {
		t.Fatalf("expense growth over zero baseline = %s", c.ExpenseGrowth.Percent)
	}
	// profit 70000 vs 80000
	if !c.ProfitGrowth.Percent.Equal(decimal.RequireFromString("-12.5")) || c.ProfitGrowth.Favorable {
		t.Fatalf("unexpected profit growth %+v", c.ProfitGrowth)
	}

	shifted := filterFor(l, period("2024-02-01", "2024-02-28"))
	if !shifted {
		t.Fatalf("prior-year period was not requested: %+v", l.filters)
	}
}

func TestProfitLoss_LeapDayPeriodComparison(t *testing.T) {
	l := &fakeLedger{txs: []core.Transaction{
		tx("2023-02-28", 1000, core.Expense, "Rent"),
		tx("2024-02-29", 2000, core.Expense, "Rent"),
	}}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2024-02-29", "2024-02-29"), true)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	if rep.Comparison.Period.String() != "2023-02-28..2023-02-28" {
		t.Fatalf("unexpected comparison period %s", rep.Comparison.Period)
	}
	g := rep.Comparison.ExpenseGrowth
	if !g.Percent.Equal(decimal.NewFromInt(100)) || g.Favorable {
		t.Fatalf("unexpected expense growth %+v", g)
	}
}

func TestProfitLoss_PriorYearFailureAborts(t *testing.T) {
	boom := errors.New("quota exceeded")
	l := &fakeLedger{
		txs: []core.Transaction{tx("2025-01-05", 100, core.Income, "Sales")},
		errFor: func(f ledger.Filter) error {
			if f.Start.Year() == 2024 {
				return boom
			}
			return nil
		},
	}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-01-01", "2025-01-31"), true)
	if rep != nil || !errors.Is(err, boom) {
		t.Fatalf("expected failure without report, got %v / %v", rep, err)
	}
}

func filterFor(l *fakeLedger, p core.Period) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.filters {
		if f.Start.Equal(p.Start.Time) && f.End.Equal(p.End.Time) {
			return true
		}
	}
	return false
}

func TestProfitLoss_CountsTheWholeLastDay(t *testing.T) {
	l := &fakeLedger{txs: []core.Transaction{
		{CompanyID: "acme", Date: core.Date{Time: time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)},
			Amount: core.Cents(100000), Type: core.Income, Category: "Sales"},
		{CompanyID: "acme", Date: core.Date{Time: time.Date(2025, 2, 1, 0, 0, 1, 0, time.UTC)},
			Amount: core.Cents(50000), Type: core.Income, Category: "Sales"},
	}}
	rep, err := newTestEngine(l).ProfitLoss(context.Background(), "acme", period("2025-01-01", "2025-01-31"), false)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	if pl := profitLoss(t, rep); pl.TotalIncome != core.Cents(100000) {
		t.Fatalf("TotalIncome = %s, want 1000.00", pl.TotalIncome)
	}
}
