package reports

import (
	"context"
	"strings"

	"rendiconto/internal/core"
)

var fixedAssetMarkers = []string{"fixed", "equipment"}

// BalanceSheet classifies the company's accounts by their current balances.
// asOf is recorded on the report; balances are not recomputed for it.
func (e *Engine) BalanceSheet(ctx context.Context, companyID string, asOf core.Date) (*Report, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, ErrMissingCompany
	}
	if asOf.IsZero() {
		return nil, ErrMissingAsOf
	}
	if e.accounts == nil {
		return nil, newGenerationError("read accounts", core.BalanceSheetReport, companyID, errNoReader)
	}
	accounts, err := e.accounts.Accounts(ctx, companyID)
	if err != nil {
		return nil, newGenerationError("read accounts", core.BalanceSheetReport, companyID, err)
	}

	bs := classify(accounts)
	if bs.UnclassifiedAccounts > 0 {
		e.logger.WarnContext(ctx, "Accounts excluded from balance sheet",
			"company_id", companyID,
			"unclassified", bs.UnclassifiedAccounts)
	}

	rep := e.newReport(core.BalanceSheetReport, companyID)
	rep.AsOf = &asOf
	rep.Data = bs
	return rep, nil
}

func classify(accounts []core.Account) BalanceSheet {
	var bs BalanceSheet
	for _, acc := range accounts {
		bal := acc.CurrentBalance
		switch acc.Type {
		case core.Cash:
			bs.Assets.Current.Cash = bs.Assets.Current.Cash.Add(bal)
		case core.Bank:
			bs.Assets.Current.Bank = bs.Assets.Current.Bank.Add(bal)
		case core.Asset:
			if isFixedAsset(acc.Category) {
				bs.Assets.Fixed.Equipment = bs.Assets.Fixed.Equipment.Add(bal)
			} else {
				bs.Assets.Current.Inventory = bs.Assets.Current.Inventory.Add(bal)
			}
		case core.CreditCard:
			bs.Liabilities.Current.CreditCards = bs.Liabilities.Current.CreditCards.Add(bal.Abs())
		case core.Liability:
			bs.Liabilities.LongTerm.Loans = bs.Liabilities.LongTerm.Loans.Add(bal.Abs())
		default:
			bs.UnclassifiedAccounts++
		}
	}

	cur := bs.Assets.Current
	bs.Assets.TotalCurrent = cur.Cash.Add(cur.Bank).Add(cur.Inventory)
	bs.Assets.TotalFixed = bs.Assets.Fixed.Equipment
	bs.TotalAssets = bs.Assets.TotalCurrent.Add(bs.Assets.TotalFixed)

	bs.Liabilities.TotalCurrent = bs.Liabilities.Current.CreditCards
	bs.Liabilities.TotalLongTerm = bs.Liabilities.LongTerm.Loans
	bs.TotalLiabilities = bs.Liabilities.TotalCurrent.Add(bs.Liabilities.TotalLongTerm)

	bs.Equity.RetainedEarnings = bs.TotalAssets.Sub(bs.TotalLiabilities)
	bs.TotalEquity = bs.Equity.RetainedEarnings
	return bs
}

func isFixedAsset(category string) bool {
	c := strings.ToLower(category)
	for _, m := range fixedAssetMarkers {
		if strings.Contains(c, m) {
			return true
		}
	}
	return false
}
