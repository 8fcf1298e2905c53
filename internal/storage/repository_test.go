package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
	"rendiconto/internal/reports"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{CompanyID: "acme", Date: core.NewDate(2024, 12, 20), Amount: core.Cents(50000), Type: core.Income, Category: "Sales"},
		{CompanyID: "acme", Date: core.NewDate(2025, 1, 10), Amount: core.Cents(20000), Type: core.Expense, Category: "Rent"},
		{CompanyID: "acme", Date: core.NewDate(2025, 1, 31), Amount: core.Cents(1000), Type: core.Income},
		{CompanyID: "globex", Date: core.NewDate(2025, 1, 15), Amount: core.Cents(7000), Type: core.Income},
	}
	for _, tx := range seed {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}
	if _, err := repo.AddTransaction(ctx, core.Transaction{CompanyID: "acme", Date: core.NewDate(2025, 1, 1), Amount: core.Cents(-1), Type: core.Income}); err == nil {
		t.Fatalf("expected validation error")
	}

	tests := []struct {
		name   string
		filter ledger.Filter
		want   int
	}{
		{"all", ledger.Filter{}, 3},
		{"january", ledger.InPeriod(core.Period{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}), 2},
		{"until", ledger.Until(core.NewDate(2025, 1, 10)), 2},
		{"expenses", ledger.Filter{Type: core.Expense}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Transactions(ctx, "acme", tt.filter)
			if err != nil {
				t.Fatalf("Transactions() error = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d transactions, want %d", len(got), tt.want)
			}
			for _, tx := range got {
				if tx.CompanyID != "acme" || !tt.filter.Match(tx) {
					t.Fatalf("unexpected transaction %+v", tx)
				}
			}
		})
	}
}

func TestRepositoryAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddAccount(ctx, core.Account{CompanyID: "acme", Name: "Visa", Type: core.CreditCard, CurrentBalance: core.Cents(-40000)})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	if _, err := repo.AddAccount(ctx, core.Account{CompanyID: "acme", Name: "Till", Type: core.Cash, CurrentBalance: core.Cents(100000)}); err != nil {
		t.Fatalf("add account: %v", err)
	}
	if err := repo.SetAccountBalance(ctx, id, core.Cents(-45000)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if err := repo.SetAccountBalance(ctx, "9999", core.Cents(1)); err == nil {
		t.Fatalf("expected error for unknown account")
	}

	accs, err := repo.Accounts(ctx, "acme")
	if err != nil {
		t.Fatalf("Accounts() error = %v", err)
	}
	if len(accs) != 2 || accs[0].CurrentBalance.Cents != -45000 || accs[0].Type != core.CreditCard {
		t.Fatalf("unexpected accounts %+v", accs)
	}
}

func TestRepositoryReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	src := &memLedger{
		txs: []core.Transaction{
			{CompanyID: "acme", Date: core.NewDate(2025, 1, 1), Amount: core.Cents(100000), Type: core.Income, Category: "Sales"},
			{CompanyID: "acme", Date: core.NewDate(2025, 1, 15), Amount: core.Cents(30000), Type: core.Expense, Category: "Rent"},
		},
		accounts: []core.Account{{CompanyID: "acme", Type: core.Cash, CurrentBalance: core.Cents(5000)}},
	}
	engine := reports.NewEngine(src, src)
	jan := core.Period{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}

	pl, err := engine.ProfitLoss(ctx, "acme", jan, true)
	if err != nil {
		t.Fatalf("ProfitLoss() error = %v", err)
	}
	id, err := repo.SaveReport(ctx, pl)
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	if id == "" || pl.ID != id {
		t.Fatalf("expected assigned id, got %q / %q", id, pl.ID)
	}

	got, err := repo.GetReport(ctx, id)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	data, ok := got.Data.(reports.ProfitLoss)
	if !ok {
		t.Fatalf("decoded data has type %T", got.Data)
	}
	want := pl.Data.(reports.ProfitLoss)
	if data.NetProfit != want.NetProfit || !data.ProfitMargin.Equal(want.ProfitMargin) || len(data.IncomeByCategory) != 1 {
		t.Fatalf("decoded report differs: %+v vs %+v", data, want)
	}
	if got.Comparison == nil || got.Period == nil || got.Period.Start.String() != "2025-01-01" {
		t.Fatalf("envelope not restored: %+v", got)
	}

	// Resaving with the same id replaces, it does not duplicate.
	if _, err := repo.SaveReport(ctx, pl); err != nil {
		t.Fatalf("resave: %v", err)
	}
	time.Sleep(time.Millisecond)
	bs, err := engine.BalanceSheet(ctx, "acme", jan.End)
	if err != nil {
		t.Fatalf("BalanceSheet() error = %v", err)
	}
	if _, err := repo.SaveReport(ctx, bs); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	list, err := repo.ListReports(ctx, "acme", 10)
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(list))
	}
	if list[0].Type != core.BalanceSheetReport {
		t.Fatalf("expected newest first, got %s", list[0].Type)
	}
	if _, ok := list[0].Data.(reports.BalanceSheet); !ok {
		t.Fatalf("balance sheet decoded as %T", list[0].Data)
	}

	if _, err := repo.GetReport(ctx, "missing"); !errors.Is(err, reports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositorySchedules(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.SaveSchedule(ctx, core.ReportSchedule{
		CompanyID:       "acme",
		ReportType:      core.ProfitLossReport,
		Every:           core.Monthly,
		StartDate:       core.NewDate(2025, 1, 1),
		EndDate:         core.NewDate(2025, 12, 31),
		CompareLastYear: true,
	})
	if err != nil {
		t.Fatalf("SaveSchedule() error = %v", err)
	}
	if _, err := repo.SaveSchedule(ctx, core.ReportSchedule{CompanyID: "acme", ReportType: "bogus", Every: core.Daily, StartDate: core.NewDate(2025, 1, 1)}); err == nil {
		t.Fatalf("expected validation error")
	}

	active, err := repo.ActiveSchedules(ctx, core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("ActiveSchedules() error = %v", err)
	}
	if len(active) != 1 || active[0].ID != id || !active[0].CompareLastYear || !active[0].LastRunAt.IsZero() {
		t.Fatalf("unexpected schedules %+v", active)
	}
	if expired, _ := repo.ActiveSchedules(ctx, core.NewDate(2026, 1, 1)); len(expired) != 0 {
		t.Fatalf("schedule past its end date must not be active")
	}

	ran := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	if err := repo.MarkScheduleRun(ctx, id, ran); err != nil {
		t.Fatalf("MarkScheduleRun() error = %v", err)
	}
	active, _ = repo.ActiveSchedules(ctx, core.NewDate(2025, 6, 2))
	if !active[0].LastRunAt.Equal(ran) {
		t.Fatalf("LastRunAt = %v, want %v", active[0].LastRunAt, ran)
	}

	if err := repo.DeleteSchedule(ctx, id); err != nil {
		t.Fatalf("DeleteSchedule() error = %v", err)
	}
	if err := repo.DeleteSchedule(ctx, id); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

// memLedger is a minimal reader used to produce reports for storage tests.
type memLedger struct {
	txs      []core.Transaction
	accounts []core.Account
}

func (m *memLedger) Transactions(_ context.Context, companyID string, f ledger.Filter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range m.txs {
		if tx.CompanyID == companyID && f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *memLedger) Accounts(_ context.Context, companyID string) ([]core.Account, error) {
	return m.accounts, nil
}
