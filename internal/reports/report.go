package reports

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rendiconto/internal/core"
)

// Report is the envelope handed to presentation and persistence. ID is left
// empty by the engine and assigned by whichever store saves the report.
type Report struct {
	ID          string          `json:"id,omitempty"`
	Type        core.ReportType `json:"reportType"`
	CompanyID   string          `json:"companyId"`
	Period      *core.Period    `json:"period,omitempty"`
	AsOf        *core.Date      `json:"asOfDate,omitempty"`
	Data        any             `json:"data"`
	Comparison  *Comparison     `json:"comparison,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ProfitLoss is the data of a profit-loss report.
type ProfitLoss struct {
	IncomeByCategory  []core.CategoryAmount `json:"incomeByCategory"`
	ExpenseByCategory []core.CategoryAmount `json:"expenseByCategory"`
	TotalIncome       core.Money            `json:"totalIncome"`
	TotalExpenses     core.Money            `json:"totalExpenses"`
	NetProfit         core.Money            `json:"netProfit"`
	ProfitMargin      decimal.Decimal       `json:"profitMargin"`
	Skipped           int                   `json:"skippedTransactions,omitempty"`
}

// Comparison holds the prior-year figures of a profit-loss report.
type Comparison struct {
	Period        core.Period `json:"period"`
	TotalIncome   core.Money  `json:"totalIncome"`
	TotalExpenses core.Money  `json:"totalExpenses"`
	NetProfit     core.Money  `json:"netProfit"`
	IncomeGrowth  Growth      `json:"incomeGrowth"`
	ExpenseGrowth Growth      `json:"expenseGrowth"`
	ProfitGrowth  Growth      `json:"profitGrowth"`
}

type BalanceSheet struct {
	Assets      Assets      `json:"assets"`
	Liabilities Liabilities `json:"liabilities"`
	Equity      Equity      `json:"equity"`

	TotalAssets      core.Money `json:"totalAssets"`
	TotalLiabilities core.Money `json:"totalLiabilities"`
	TotalEquity      core.Money `json:"totalEquity"`

	// UnclassifiedAccounts counts accounts whose type matched no bucket.
	UnclassifiedAccounts int `json:"unclassifiedAccounts,omitempty"`
}

type Assets struct {
	Current      CurrentAssets `json:"current"`
	Fixed        FixedAssets   `json:"fixed"`
	TotalCurrent core.Money    `json:"totalCurrentAssets"`
	TotalFixed   core.Money    `json:"totalFixedAssets"`
}

type CurrentAssets struct {
	Cash      core.Money `json:"cash"`
	Bank      core.Money `json:"bank"`
	Inventory core.Money `json:"inventory"`
}

type FixedAssets struct {
	Equipment core.Money `json:"equipment"`
}

type Liabilities struct {
	Current       CurrentLiabilities  `json:"current"`
	LongTerm      LongTermLiabilities `json:"longTerm"`
	TotalCurrent  core.Money          `json:"totalCurrentLiabilities"`
	TotalLongTerm core.Money          `json:"totalLongTermLiabilities"`
}

type CurrentLiabilities struct {
	CreditCards core.Money `json:"creditCards"`
}

type LongTermLiabilities struct {
	Loans core.Money `json:"loans"`
}

// Equity is residual: assets minus liabilities.
type Equity struct {
	RetainedEarnings core.Money `json:"retainedEarnings"`
}

type CashFlow struct {
	OpeningBalance core.Money  `json:"openingBalance"`
	Operating      Activity    `json:"operating"`
	Investing      Activity    `json:"investing"`
	Financing      Activity    `json:"financing"`
	ClosingBalance core.Money  `json:"closingBalance"`
	MonthlyFlow    []MonthFlow `json:"monthlyFlow"`
	Skipped        int         `json:"skippedTransactions,omitempty"`
}

// Activity is one section of a cash flow statement.
type Activity struct {
	Inflow  core.Money `json:"inflow"`
	Outflow core.Money `json:"outflow"`
	Net     core.Money `json:"net"`
}

type MonthFlow struct {
	Month   string     `json:"month"` // YYYY-MM
	Inflow  core.Money `json:"inflow"`
	Outflow core.Money `json:"outflow"`
	Net     core.Money `json:"net"`
}

func newActivity(inflow, outflow core.Money) Activity {
	return Activity{Inflow: inflow, Outflow: outflow, Net: inflow.Sub(outflow)}
}

// UnmarshalJSON decodes Data into the statement type named by reportType so a
// stored report reads back with the same shape it was generated with.
func (r *Report) UnmarshalJSON(b []byte) error {
	type envelope Report
	var raw struct {
		envelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Report(raw.envelope)
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		r.Data = nil
		return nil
	}
	switch r.Type {
	case core.ProfitLossReport:
		var d ProfitLoss
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return fmt.Errorf("decode %s data: %w", r.Type, err)
		}
		r.Data = d
	case core.BalanceSheetReport:
		var d BalanceSheet
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return fmt.Errorf("decode %s data: %w", r.Type, err)
		}
		r.Data = d
	case core.CashFlowReport:
		var d CashFlow
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return fmt.Errorf("decode %s data: %w", r.Type, err)
		}
		r.Data = d
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportType, r.Type)
	}
	return nil
}
