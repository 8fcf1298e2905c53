package ledger

import (
	"fmt"
	"strings"

	"rendiconto/internal/core"
)

// Column headers understood by the tabular ledger sources (CSV seed files and
// spreadsheets). Matching is case-insensitive.
const (
	ColCompany        = "Company"
	ColID             = "ID"
	ColDate           = "Date"
	ColType           = "Type"
	ColCategory       = "Category"
	ColAmount         = "Amount"
	ColDescription    = "Description"
	ColName           = "Name"
	ColInitialBalance = "Initial Balance"
	ColCurrentBalance = "Current Balance"
)

// TransactionColumns maps transaction fields to column positions.
type TransactionColumns struct {
	company, id, date, typ, category, amount, description int
}

// AccountColumns maps account fields to column positions.
type AccountColumns struct {
	company, id, name, typ, category, initial, current int
}

// NewTransactionColumns resolves positions from a header row. Company, Date,
// Type and Amount are required.
func NewTransactionColumns(headers []string) (TransactionColumns, error) {
	c := TransactionColumns{
		company:     indexOf(headers, ColCompany),
		id:          indexOf(headers, ColID),
		date:        indexOf(headers, ColDate),
		typ:         indexOf(headers, ColType),
		category:    indexOf(headers, ColCategory),
		amount:      indexOf(headers, ColAmount),
		description: indexOf(headers, ColDescription),
	}
	if err := missing(headers, map[string]int{
		ColCompany: c.company,
		ColDate:    c.date,
		ColType:    c.typ,
		ColAmount:  c.amount,
	}); err != nil {
		return TransactionColumns{}, err
	}
	return c, nil
}

// Parse converts one data row into a transaction.
func (c TransactionColumns) Parse(row []string) (core.Transaction, error) {
	date, err := core.ParseDate(safeGet(row, c.date))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(safeGet(row, c.amount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", safeGet(row, c.amount), err)
	}
	tx := core.Transaction{
		ID:          safeGet(row, c.id),
		CompanyID:   safeGet(row, c.company),
		Date:        date,
		Amount:      amount,
		Type:        core.TransactionType(strings.ToLower(safeGet(row, c.typ))),
		Category:    safeGet(row, c.category),
		Description: safeGet(row, c.description),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// NewAccountColumns resolves positions from a header row. Company, Type and
// Current Balance are required.
func NewAccountColumns(headers []string) (AccountColumns, error) {
	c := AccountColumns{
		company:  indexOf(headers, ColCompany),
		id:       indexOf(headers, ColID),
		name:     indexOf(headers, ColName),
		typ:      indexOf(headers, ColType),
		category: indexOf(headers, ColCategory),
		initial:  indexOf(headers, ColInitialBalance),
		current:  indexOf(headers, ColCurrentBalance),
	}
	if err := missing(headers, map[string]int{
		ColCompany:        c.company,
		ColType:           c.typ,
		ColCurrentBalance: c.current,
	}); err != nil {
		return AccountColumns{}, err
	}
	return c, nil
}

// Parse converts one data row into an account. Unknown account types are
// kept; classification is the balance sheet's concern.
func (c AccountColumns) Parse(row []string) (core.Account, error) {
	current, err := core.ParseBalance(safeGet(row, c.current))
	if err != nil {
		return core.Account{}, fmt.Errorf("current balance %q: %w", safeGet(row, c.current), err)
	}
	var initial core.Money
	if s := safeGet(row, c.initial); s != "" {
		if initial, err = core.ParseBalance(s); err != nil {
			return core.Account{}, fmt.Errorf("initial balance %q: %w", s, err)
		}
	}
	acc := core.Account{
		ID:             safeGet(row, c.id),
		CompanyID:      safeGet(row, c.company),
		Name:           safeGet(row, c.name),
		Type:           core.AccountType(strings.ToLower(safeGet(row, c.typ))),
		Category:       safeGet(row, c.category),
		InitialBalance: initial,
		CurrentBalance: current,
	}
	if strings.TrimSpace(acc.CompanyID) == "" {
		return core.Account{}, core.ErrMissingCompany
	}
	return acc, nil
}

func missing(headers []string, required map[string]int) error {
	var names []string
	for _, name := range []string{ColCompany, ColDate, ColType, ColAmount, ColCurrentBalance} {
		if idx, ok := required[name]; ok && idx == -1 {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		return fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", strings.Join(names, ","), headers)
	}
	return nil
}

// ToStrings trims every cell of a raw row.
func ToStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}
