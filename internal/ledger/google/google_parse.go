package google

import (
	"strconv"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
)

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into transactions. The first row must be the header. Blank rows are ignored;
// rows that fail validation are counted in skipped.
func parseTransactions(values [][]interface{}) ([]core.Transaction, int, error) {
	if len(values) == 0 {
		return nil, 0, nil
	}
	cols, err := ledger.NewTransactionColumns(ledger.ToStrings(values[0]))
	if err != nil {
		return nil, 0, err
	}
	var (
		out     []core.Transaction
		skipped int
	)
	for i := 1; i < len(values); i++ {
		row := ledger.ToStrings(values[i])
		if blank(row) {
			continue
		}
		tx, err := cols.Parse(row)
		if err != nil {
			skipped++
			continue
		}
		if tx.ID == "" {
			tx.ID = rowRef("T", i+1)
		}
		out = append(out, tx)
	}
	return out, skipped, nil
}

func parseAccounts(values [][]interface{}) ([]core.Account, int, error) {
	if len(values) == 0 {
		return nil, 0, nil
	}
	cols, err := ledger.NewAccountColumns(ledger.ToStrings(values[0]))
	if err != nil {
		return nil, 0, err
	}
	var (
		out     []core.Account
		skipped int
	)
	for i := 1; i < len(values); i++ {
		row := ledger.ToStrings(values[i])
		if blank(row) {
			continue
		}
		acc, err := cols.Parse(row)
		if err != nil {
			skipped++
			continue
		}
		if acc.ID == "" {
			acc.ID = rowRef("A", i+1)
		}
		out = append(out, acc)
	}
	return out, skipped, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// rowRef identifies a row without an explicit ID by its sheet row number.
func rowRef(prefix string, n int) string {
	return prefix + "!" + strconv.Itoa(n)
}
