package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rendiconto/internal/cli"
	"rendiconto/internal/core"
	"rendiconto/internal/log"
	"rendiconto/internal/reports"
)

var profitLossCmd = &cobra.Command{
	Use:   "profit-loss",
	Short: "Income statement for a period",
	Example: `  rendiconto-cli profit-loss --company acme --start 2025-01-01 --end 2025-03-31

  # With the same period of the previous year
  rendiconto-cli profit-loss --company acme --start 2025-01-01 --end 2025-03-31 --compare-last-year`,
	RunE: runReport(core.ProfitLossReport),
}

var balanceSheetCmd = &cobra.Command{
	Use:     "balance-sheet",
	Short:   "Balance sheet at a date",
	Example: `  rendiconto-cli balance-sheet --company acme --as-of 2025-03-31`,
	RunE:    runReport(core.BalanceSheetReport),
}

var cashFlowCmd = &cobra.Command{
	Use:     "cash-flow",
	Short:   "Cash flow statement with a monthly breakdown",
	Example: `  rendiconto-cli cash-flow --company acme --start 2025-01-01 --end 2025-12-31`,
	RunE:    runReport(core.CashFlowReport),
}

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "All three statements for a period",
	Long: `Generates the profit and loss and cash flow statements for the period and
the balance sheet at its end date, concurrently.`,
	Example: `  rendiconto-cli statements --company acme --start 2025-01-01 --end 2025-12-31`,
	RunE:    runStatements,
}

func init() {
	for _, c := range []*cobra.Command{profitLossCmd, cashFlowCmd, statementsCmd} {
		c.Flags().String("start", "", "Period start (YYYY-MM-DD)")
		c.Flags().String("end", "", "Period end (YYYY-MM-DD)")
		c.Flags().Bool("compare-last-year", false, "Include the same period of the previous year")
		_ = c.MarkFlagRequired("start")
		_ = c.MarkFlagRequired("end")
	}
	balanceSheetCmd.Flags().String("as-of", "", "Balance sheet date (YYYY-MM-DD)")
	_ = balanceSheetCmd.MarkFlagRequired("as-of")

	for _, c := range []*cobra.Command{profitLossCmd, balanceSheetCmd, cashFlowCmd} {
		c.Flags().Bool("save", false, "Persist the report (sqlite backend only)")
	}

	rootCmd.AddCommand(profitLossCmd, balanceSheetCmd, cashFlowCmd, statementsCmd)
}

func runReport(typ core.ReportType) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd, typ)
		if err != nil {
			return err
		}
		save, _ := cmd.Flags().GetBool("save")

		logger := newLogger(cmd)
		cfg := cli.LoadAndValidateConfig(logger)
		res := cli.InitBackend(cmd.Context(), logger, cfg)
		defer cli.CloseBackend(logger, res)
		svcs := cli.NewServices(logger, cfg, res, nil)
		defer svcs.Close()

		var report *reports.Report
		if save {
			report, err = svcs.Reports.GenerateAndSave(cmd.Context(), req)
		} else {
			report, err = svcs.Reports.Generate(cmd.Context(), req)
		}
		if err != nil {
			return fmt.Errorf("generate %s: %w", typ, err)
		}
		logger.Debug("Report generated", log.FieldCompanyID, req.CompanyID, log.FieldReportType, string(typ), "saved", save)
		return printJSON(cmd.OutOrStdout(), report)
	}
}

func runStatements(cmd *cobra.Command, args []string) error {
	// validated as a profit and loss request: company plus period
	req, err := requestFromFlags(cmd, core.ProfitLossReport)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	cfg := cli.LoadAndValidateConfig(logger)
	res := cli.InitBackend(cmd.Context(), logger, cfg)
	defer cli.CloseBackend(logger, res)
	svcs := cli.NewServices(logger, cfg, res, nil)
	defer svcs.Close()

	stmts, err := svcs.Reports.GenerateAll(cmd.Context(), req.CompanyID, req.Period, req.CompareLastYear)
	if err != nil {
		return fmt.Errorf("generate statements: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), stmts)
}

// requestFromFlags reads the flags registered on cmd. Missing values are left
// for Request.Validate to report.
func requestFromFlags(cmd *cobra.Command, typ core.ReportType) (reports.Request, error) {
	company, _ := cmd.Flags().GetString("company")
	req := reports.Request{Type: typ, CompanyID: strings.TrimSpace(company)}

	var err error
	if cmd.Flags().Lookup("start") != nil {
		if req.Period.Start, err = dateFlag(cmd, "start"); err != nil {
			return req, err
		}
		if req.Period.End, err = dateFlag(cmd, "end"); err != nil {
			return req, err
		}
		req.CompareLastYear, _ = cmd.Flags().GetBool("compare-last-year")
	}
	if cmd.Flags().Lookup("as-of") != nil {
		if req.AsOf, err = dateFlag(cmd, "as-of"); err != nil {
			return req, err
		}
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func dateFlag(cmd *cobra.Command, name string) (core.Date, error) {
	v, _ := cmd.Flags().GetString(name)
	v = strings.TrimSpace(v)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, v)
	}
	return d, nil
}
