package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rendiconto/internal/cli"
	"rendiconto/internal/log"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "rendiconto-cli",
	Short: "Generate financial statements from the configured ledger",
	Long: `rendiconto-cli builds profit and loss, balance sheet and cash flow
statements for one company and prints them as JSON.

The ledger is selected with DATA_BACKEND (memory, sqlite or sheets) and the
same environment variables used by the rendiconto server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("company", "", "Company identifier (required)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	_ = rootCmd.MarkPersistentFlagRequired("company")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(cmd *cobra.Command) *log.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return cli.SetupLoggerTo(os.Stderr, level, log.ComponentCLI)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
