package google

import (
	"testing"

	"rendiconto/internal/core"
)

func TestParseTransactions(t *testing.T) {
	values := [][]interface{}{
		{"Company", "Date", "Type", "Category", "Amount", "Description"},
		{"acme", "2025-01-03", "Income", "Sales", 1500.5, "Invoice 12"},
		{"acme", "2025-01-04", "expense", "", "300,00", "Stationery"},
		{"", "", "", "", "", ""},
		{"acme", "2025-01-05", "transfer", "Bank", 10, "Not a P&L line"},
		{"acme", "2025-01-06", "expense", "Rent", "-5", "Negative"},
		{"acme", "2025-01-07", "income"}, // short row: missing amount
	}
	txs, skipped, err := parseTransactions(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d: %+v", len(txs), txs)
	}
	if skipped != 3 {
		t.Fatalf("expected 3 skipped rows, got %d", skipped)
	}
	if txs[0].Amount.Cents != 150050 || txs[0].Type != core.Income {
		t.Fatalf("unexpected first row: %+v", txs[0])
	}
	if txs[0].ID != "T!2" {
		t.Fatalf("expected row reference id, got %q", txs[0].ID)
	}
	if txs[1].CategoryOrDefault() != core.UncategorizedCategory {
		t.Fatalf("blank category should fall back, got %q", txs[1].Category)
	}
}

func TestParseTransactions_HeaderMismatch(t *testing.T) {
	values := [][]interface{}{
		{"Month", "Day", "Description", "Amount"},
		{1, 3, "Coffee", 2.5},
	}
	if _, _, err := parseTransactions(values); err == nil {
		t.Fatalf("expected header error")
	}
}

func TestParseAccounts(t *testing.T) {
	values := [][]interface{}{
		{"Company", "ID", "Name", "Type", "Category", "Current Balance"},
		{"acme", "a1", "Checking", "bank", "", 5000},
		{"acme", "", "Visa", "credit_card", "", "-400"},
		{"acme", "a3", "Van", "asset", "Fixed Assets", "12000.00"},
		{"acme", "a4", "Mystery", "crypto", "", "7"},
		{"acme", "a5", "Broken", "cash", "", "n/a"},
	}
	accs, skipped, err := parseAccounts(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", skipped)
	}
	if len(accs) != 4 {
		t.Fatalf("expected 4 accounts, got %d", len(accs))
	}
	if accs[1].ID != "A!3" || accs[1].CurrentBalance.Cents != -40000 {
		t.Fatalf("unexpected credit card row: %+v", accs[1])
	}
	// Unknown types survive parsing; the balance sheet decides what to do.
	if accs[3].Type != core.AccountType("crypto") {
		t.Fatalf("unexpected type %q", accs[3].Type)
	}
}
