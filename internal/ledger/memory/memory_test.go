package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
)

func TestMemoryStoreAddAndFilter(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()

	add := func(d core.Date, cents int64, typ core.TransactionType, company string) {
		t.Helper()
		if _, err := s.AddTransaction(ctx, core.Transaction{
			CompanyID: company, Date: d, Amount: core.Cents(cents), Type: typ,
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	add(core.NewDate(2024, 12, 20), 500, core.Income, "acme")
	add(core.NewDate(2025, 1, 10), 200, core.Expense, "acme")
	add(core.NewDate(2025, 1, 11), 900, core.Income, "other")

	all, _ := s.Transactions(ctx, "acme", ledger.Filter{})
	if len(all) != 2 {
		t.Fatalf("expected 2 acme transactions, got %d", len(all))
	}
	if all[0].ID != "mem:1" {
		t.Fatalf("unexpected id %q", all[0].ID)
	}

	jan, _ := s.Transactions(ctx, "acme", ledger.InPeriod(core.Period{
		Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31),
	}))
	if len(jan) != 1 || jan[0].Amount.Cents != 200 {
		t.Fatalf("unexpected january result: %+v", jan)
	}

	incomes, _ := s.Transactions(ctx, "acme", ledger.Filter{Type: core.Income})
	if len(incomes) != 1 || incomes[0].Type != core.Income {
		t.Fatalf("unexpected income result: %+v", incomes)
	}

	if _, err := s.AddTransaction(ctx, core.Transaction{CompanyID: "acme", Date: core.NewDate(2025, 1, 1), Amount: core.Cents(-1), Type: core.Income}); err == nil {
		t.Fatalf("expected negative amount to be rejected")
	}
}

func TestNewFromFilesSeedsAndSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty ledger
	s := NewFromFiles(dir)
	if txs, _ := s.Transactions(context.Background(), "acme", ledger.Filter{}); len(txs) != 0 {
		t.Fatalf("expected empty ledger when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("transactions.csv", "# seed\nCompany,Date,Type,Category,Amount,Description\n"+
		"acme,2025-01-01,income,Sales,1000,Invoice 1\n"+
		"acme,2025-01-15,Expense,Rent,\"300,00\",January rent\n"+
		"acme,2025-01-16,expense,Rent,abc,broken\n"+
		"acme,not-a-date,income,Sales,1,broken\n")
	mustWrite("accounts.csv", "Company,ID,Name,Type,Category,Initial Balance,Current Balance\n"+
		"acme,a1,Till,cash,,0,1000\n"+
		"acme,a2,Visa,credit_card,,0,-400\n")

	s = NewFromFiles(dir)
	txs, _ := s.Transactions(context.Background(), "acme", ledger.Filter{})
	if len(txs) != 2 {
		t.Fatalf("expected 2 valid transactions, got %d: %+v", len(txs), txs)
	}
	if txs[1].Type != core.Expense || txs[1].Amount.Cents != 30000 {
		t.Fatalf("unexpected second transaction: %+v", txs[1])
	}
	accs, _ := s.Accounts(context.Background(), "acme")
	if len(accs) != 2 || accs[1].CurrentBalance.Cents != -40000 {
		t.Fatalf("unexpected accounts: %+v", accs)
	}
}
