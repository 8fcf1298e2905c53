package reports

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"rendiconto/internal/core"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		txs         []core.Transaction
		wantIncome  []core.CategoryAmount
		wantExpense []core.CategoryAmount
		wantSkipped int
	}{
		{
			name:        "empty",
			wantIncome:  []core.CategoryAmount{},
			wantExpense: []core.CategoryAmount{},
		},
		{
			name: "grouped and sorted",
			txs: []core.Transaction{
				tx("2025-01-02", 500, core.Income, "Services"),
				tx("2025-01-01", 1000, core.Income, "Sales"),
				tx("2025-01-03", 250, core.Income, "Sales"),
				tx("2025-01-04", 300, core.Expense, "Rent"),
				tx("2025-01-05", 120, core.Expense, "Fuel"),
			},
			wantIncome: []core.CategoryAmount{
				{Name: "Sales", Amount: core.Cents(1250)},
				{Name: "Services", Amount: core.Cents(500)},
			},
			wantExpense: []core.CategoryAmount{
				{Name: "Fuel", Amount: core.Cents(120)},
				{Name: "Rent", Amount: core.Cents(300)},
			},
		},
		{
			name: "blank category",
			txs: []core.Transaction{
				tx("2025-01-01", 100, core.Expense, ""),
				tx("2025-01-02", 50, core.Expense, "   "),
			},
			wantIncome:  []core.CategoryAmount{},
			wantExpense: []core.CategoryAmount{{Name: core.UncategorizedCategory, Amount: core.Cents(150)}},
		},
		{
			name: "unusable records are counted",
			txs: []core.Transaction{
				tx("2025-01-01", 100, core.Income, "Sales"),
				tx("2025-01-02", -40, core.Income, "Sales"),
				tx("2025-01-03", 70, core.TransactionType("transfer"), "Bank"),
			},
			wantIncome:  []core.CategoryAmount{{Name: "Sales", Amount: core.Cents(100)}},
			wantExpense: []core.CategoryAmount{},
			wantSkipped: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(tt.txs)
			if !reflect.DeepEqual(agg.Income, tt.wantIncome) {
				t.Errorf("Income = %+v, want %+v", agg.Income, tt.wantIncome)
			}
			if !reflect.DeepEqual(agg.Expense, tt.wantExpense) {
				t.Errorf("Expense = %+v, want %+v", agg.Expense, tt.wantExpense)
			}
			if agg.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", agg.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestAggregateBucketsAddUpToTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"Sales", "Rent", "Payroll", "", "Fees", "Travel"}

	for round := 0; round < 50; round++ {
		var (
			txs                 []core.Transaction
			wantIncome, wantExp int64
		)
		n := rng.Intn(200)
		for i := 0; i < n; i++ {
			cents := rng.Int63n(1_000_000)
			typ := core.Income
			if rng.Intn(2) == 0 {
				typ = core.Expense
				wantExp += cents
			} else {
				wantIncome += cents
			}
			txs = append(txs, tx("2025-01-01", cents, typ, categories[rng.Intn(len(categories))]))
		}

		agg := Aggregate(txs)
		if got := core.SumAmounts(agg.Income); got != agg.TotalIncome {
			t.Fatalf("round %d: income buckets %s != total %s", round, got, agg.TotalIncome)
		}
		if got := core.SumAmounts(agg.Expense); got != agg.TotalExpenses {
			t.Fatalf("round %d: expense buckets %s != total %s", round, got, agg.TotalExpenses)
		}
		if agg.TotalIncome.Cents != wantIncome || agg.TotalExpenses.Cents != wantExp {
			t.Fatalf("round %d: money lost or duplicated", round)
		}
		if agg.NetProfit() != agg.TotalIncome.Sub(agg.TotalExpenses) {
			t.Fatalf("round %d: net profit mismatch", round)
		}
	}
}

func TestAggregateSkipsOverflowingAmounts(t *testing.T) {
	huge := int64(math.MaxInt64 - 10)
	agg := Aggregate([]core.Transaction{
		tx("2025-01-01", huge, core.Income, "Sales"),
		tx("2025-01-02", 100, core.Income, "Fees"),
		tx("2025-01-03", 5, core.Income, "Fees"),
		tx("2025-01-04", 100, core.Expense, "Rent"),
	})
	if agg.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", agg.Skipped)
	}
	if agg.TotalIncome != core.Cents(huge+5) {
		t.Fatalf("TotalIncome = %d, want %d", agg.TotalIncome.Cents, huge+5)
	}
	if got := core.SumAmounts(agg.Income); got != agg.TotalIncome {
		t.Fatalf("buckets %d != total %d", got.Cents, agg.TotalIncome.Cents)
	}
	if agg.TotalExpenses != core.Cents(100) {
		t.Fatalf("TotalExpenses = %s", agg.TotalExpenses)
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	txs := []core.Transaction{
		tx("2025-01-01", 100, core.Income, "B"),
		tx("2025-01-02", 200, core.Income, "A"),
		tx("2025-01-03", 300, core.Expense, "C"),
		tx("2025-01-04", 400, core.Income, "B"),
	}
	reversed := make([]core.Transaction, len(txs))
	for i := range txs {
		reversed[len(txs)-1-i] = txs[i]
	}
	if !reflect.DeepEqual(Aggregate(txs), Aggregate(reversed)) {
		t.Fatalf("aggregation depends on input order")
	}
}
