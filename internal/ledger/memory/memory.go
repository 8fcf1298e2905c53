package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
)

var (
	_ ledger.TransactionReader = (*Store)(nil)
	_ ledger.AccountReader     = (*Store)(nil)
)

// Store is an in-memory ledger, safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	accounts []core.Account
}

func New(txs []core.Transaction, accounts []core.Account) *Store {
	return &Store{
		txs:      append([]core.Transaction(nil), txs...),
		accounts: append([]core.Account(nil), accounts...),
	}
}

// NewFromFiles seeds the store from transactions.csv and accounts.csv in base.
// Missing files yield an empty ledger; malformed rows are skipped and logged.
func NewFromFiles(base string) *Store {
	s := New(nil, nil)

	txRows := readCSV(filepath.Join(base, "transactions.csv"))
	if len(txRows) > 0 {
		cols, err := ledger.NewTransactionColumns(txRows[0])
		if err != nil {
			slog.Warn("Ignoring transactions seed file", "error", err)
		} else {
			for i, row := range txRows[1:] {
				tx, err := cols.Parse(row)
				if err != nil {
					slog.Warn("Skipping malformed transaction row", "row", i+2, "error", err)
					continue
				}
				s.add(tx)
			}
		}
	}

	accRows := readCSV(filepath.Join(base, "accounts.csv"))
	if len(accRows) > 0 {
		cols, err := ledger.NewAccountColumns(accRows[0])
		if err != nil {
			slog.Warn("Ignoring accounts seed file", "error", err)
		} else {
			for i, row := range accRows[1:] {
				acc, err := cols.Parse(row)
				if err != nil {
					slog.Warn("Skipping malformed account row", "row", i+2, "error", err)
					continue
				}
				s.addAccount(acc)
			}
		}
	}

	slog.Info("Memory ledger seeded", "data_directory", base,
		"transactions", len(s.txs), "accounts", len(s.accounts))
	return s
}

// AddTransaction stores a transaction and returns a synthetic reference.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	return s.add(tx), nil
}

// AddAccount stores an account and returns a synthetic reference.
func (s *Store) AddAccount(_ context.Context, acc core.Account) (string, error) {
	if strings.TrimSpace(acc.CompanyID) == "" {
		return "", core.ErrMissingCompany
	}
	return s.addAccount(acc), nil
}

func (s *Store) add(tx core.Transaction) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("mem:%d", len(s.txs)+1)
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	s.txs = append(s.txs, tx)
	return tx.ID
}

func (s *Store) addAccount(acc core.Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc.ID == "" {
		acc.ID = fmt.Sprintf("mem:acc:%d", len(s.accounts)+1)
	}
	s.accounts = append(s.accounts, acc)
	return acc.ID
}

// Transactions returns a copy of the matching transactions in insertion order.
func (s *Store) Transactions(_ context.Context, companyID string, f ledger.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.CompanyID == companyID && f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Accounts returns a copy of the company's accounts.
func (s *Store) Accounts(_ context.Context, companyID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, acc := range s.accounts {
		if acc.CompanyID == companyID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("Stopping at unreadable CSV record", "path", path, "error", err)
			break
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}
