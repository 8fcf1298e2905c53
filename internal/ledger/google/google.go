package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"rendiconto/internal/cache"
	"rendiconto/internal/core"
	"rendiconto/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads a company ledger kept in a Google spreadsheet. One sheet holds
// transactions and another holds accounts; both carry a header row.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	accountsSheet     string

	// Raw sheet values keyed by range; a short TTL avoids re-reading the same
	// sheet for the current and prior-year fetches of one report.
	rows *cache.LRUCache[[][]interface{}]
}

var (
	_ ledger.TransactionReader = (*Client)(nil)
	_ ledger.AccountReader     = (*Client)(nil)
)

type Options struct {
	SpreadsheetID     string
	TransactionsSheet string // default "Transactions"
	AccountsSheet     string // default "Accounts"
	CacheTTL          time.Duration
}

// New creates a Sheets client authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, opts), nil
}

func newClient(svc *gsheet.Service, opts Options) *Client {
	txSheet := strings.TrimSpace(opts.TransactionsSheet)
	if txSheet == "" {
		txSheet = "Transactions"
	}
	accSheet := strings.TrimSpace(opts.AccountsSheet)
	if accSheet == "" {
		accSheet = "Accounts"
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     opts.SpreadsheetID,
		transactionsSheet: txSheet,
		accountsSheet:     accSheet,
		rows:              cache.NewLRUCache[[][]interface{}](8, ttl),
	}
}

// newSheetsService initializes a read-only Sheets service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// Transactions reads the transactions sheet and returns the company's rows
// matching f. Rows that fail to parse are skipped and logged.
func (c *Client) Transactions(ctx context.Context, companyID string, f ledger.Filter) ([]core.Transaction, error) {
	values, err := c.read(ctx, c.transactionsSheet)
	if err != nil {
		return nil, err
	}
	txs, skipped, err := parseTransactions(values)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.transactionsSheet, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed transaction rows", "sheet", c.transactionsSheet, "skipped", skipped)
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.CompanyID == companyID && f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Accounts reads the accounts sheet and returns the company's rows.
func (c *Client) Accounts(ctx context.Context, companyID string) ([]core.Account, error) {
	values, err := c.read(ctx, c.accountsSheet)
	if err != nil {
		return nil, err
	}
	accs, skipped, err := parseAccounts(values)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.accountsSheet, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed account rows", "sheet", c.accountsSheet, "skipped", skipped)
	}
	out := make([]core.Account, 0, len(accs))
	for _, a := range accs {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

// InvalidateCache drops every cached sheet.
func (c *Client) InvalidateCache() {
	c.rows.Delete(c.transactionsSheet)
	c.rows.Delete(c.accountsSheet)
}

func (c *Client) read(ctx context.Context, sheet string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if v, ok := c.rows.Get(sheet); ok {
		return v, nil
	}
	rng := fmt.Sprintf("%s!A:J", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	c.rows.Set(sheet, resp.Values)
	return resp.Values, nil
}
