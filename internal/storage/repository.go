package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"rendiconto/internal/core"
	"rendiconto/internal/ledger"
	"rendiconto/internal/reports"

	_ "modernc.org/sqlite"
)

// Fixed-width UTC layout so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

var ErrScheduleNotFound = errors.New("schedule not found")

var (
	_ ledger.TransactionReader = (*SQLiteRepository)(nil)
	_ ledger.AccountReader     = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AddTransaction validates and stores a ledger entry.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		CompanyID:   t.CompanyID,
		Date:        t.Date.String(),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		CreatedAt:   createdAt.UTC().Format(timeLayout),
		CreatedBy:   t.CreatedBy,
	})
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"company_id", t.CompanyID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)

	return strconv.FormatInt(id, 10), nil
}

// Transactions implements ledger.TransactionReader.
func (r *SQLiteRepository) Transactions(ctx context.Context, companyID string, f ledger.Filter) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		CompanyID: companyID,
		StartDate: f.Start.String(),
		EndDate:   f.End.String(),
		Type:      string(f.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable transaction row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func toCoreTransaction(row Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	createdAt, _ := time.Parse(timeLayout, row.CreatedAt)
	return core.Transaction{
		ID:          strconv.FormatInt(row.ID, 10),
		CompanyID:   row.CompanyID,
		Date:        date,
		Amount:      core.Cents(row.AmountCents),
		Type:        core.TransactionType(row.Type),
		Category:    row.Category,
		Description: row.Description,
		CreatedAt:   createdAt,
		CreatedBy:   row.CreatedBy,
	}, nil
}

// AddAccount stores an account. Unknown types are accepted; the balance sheet
// reports them as unclassified.
func (r *SQLiteRepository) AddAccount(ctx context.Context, a core.Account) (string, error) {
	if a.CompanyID == "" {
		return "", core.ErrMissingCompany
	}
	id, err := r.queries.CreateAccount(ctx, CreateAccountParams{
		CompanyID:           a.CompanyID,
		Name:                a.Name,
		Type:                string(a.Type),
		Category:            a.Category,
		InitialBalanceCents: a.InitialBalance.Cents,
		CurrentBalanceCents: a.CurrentBalance.Cents,
	})
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// SetAccountBalance overwrites an account's current balance.
func (r *SQLiteRepository) SetAccountBalance(ctx context.Context, id string, balance core.Money) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", id, err)
	}
	affected, err := r.queries.UpdateAccountBalance(ctx, n, balance.Cents)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// Accounts implements ledger.AccountReader.
func (r *SQLiteRepository) Accounts(ctx context.Context, companyID string) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Account{
			ID:             strconv.FormatInt(row.ID, 10),
			CompanyID:      row.CompanyID,
			Name:           row.Name,
			Type:           core.AccountType(row.Type),
			Category:       row.Category,
			InitialBalance: core.Cents(row.InitialBalanceCents),
			CurrentBalance: core.Cents(row.CurrentBalanceCents),
		})
	}
	return out, nil
}

// SaveReport stores rep, assigning a new ID when it has none. Saving a report
// with an existing ID replaces its content.
func (r *SQLiteRepository) SaveReport(ctx context.Context, rep *reports.Report) (string, error) {
	if rep == nil {
		return "", errors.New("nil report")
	}
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	params := UpsertReportParams{
		ID:          rep.ID,
		CompanyID:   rep.CompanyID,
		ReportType:  string(rep.Type),
		Payload:     string(payload),
		GeneratedAt: rep.GeneratedAt.UTC().Format(timeLayout),
	}
	if rep.Period != nil {
		params.PeriodStart = nullString(rep.Period.Start.String())
		params.PeriodEnd = nullString(rep.Period.End.String())
	}
	if rep.AsOf != nil {
		params.AsOf = nullString(rep.AsOf.String())
	}
	if err := r.queries.UpsertReport(ctx, params); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	slog.InfoContext(ctx, "Report saved to SQLite",
		"id", rep.ID,
		"company_id", rep.CompanyID,
		"report_type", rep.Type)
	return rep.ID, nil
}

func (r *SQLiteRepository) GetReport(ctx context.Context, id string) (*reports.Report, error) {
	row, err := r.queries.GetReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return decodeReport(row)
}

// ListReports returns the company's most recent reports first.
func (r *SQLiteRepository) ListReports(ctx context.Context, companyID string, limit int) ([]*reports.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.queries.ListReportsByCompany(ctx, companyID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]*reports.Report, 0, len(rows))
	for _, row := range rows {
		rep, err := decodeReport(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable report", "id", row.ID, "error", err)
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}

func decodeReport(row Report) (*reports.Report, error) {
	var rep reports.Report
	if err := json.Unmarshal([]byte(row.Payload), &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", row.ID, err)
	}
	rep.ID = row.ID
	return &rep, nil
}

// SaveSchedule validates and stores a report schedule.
func (r *SQLiteRepository) SaveSchedule(ctx context.Context, s core.ReportSchedule) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var compare int64
	if s.CompareLastYear {
		compare = 1
	}
	err := r.queries.CreateSchedule(ctx, CreateScheduleParams{
		ID:              s.ID,
		CompanyID:       s.CompanyID,
		ReportType:      string(s.ReportType),
		Every:           string(s.Every),
		StartDate:       s.StartDate.String(),
		EndDate:         nullString(s.EndDate.String()),
		CompareLastYear: compare,
		CreatedAt:       r.now().UTC().Format(timeLayout),
	})
	if err != nil {
		return "", fmt.Errorf("create schedule: %w", err)
	}
	return s.ID, nil
}

// ActiveSchedules returns the schedules whose window covers day.
func (r *SQLiteRepository) ActiveSchedules(ctx context.Context, day core.Date) ([]core.ReportSchedule, error) {
	rows, err := r.queries.ListActiveSchedules(ctx, day.String())
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	out := make([]core.ReportSchedule, 0, len(rows))
	for _, row := range rows {
		s, err := toCoreSchedule(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable schedule", "id", row.ID, "error", err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func toCoreSchedule(row ReportSchedule) (core.ReportSchedule, error) {
	start, err := core.ParseDate(row.StartDate)
	if err != nil {
		return core.ReportSchedule{}, err
	}
	s := core.ReportSchedule{
		ID:              row.ID,
		CompanyID:       row.CompanyID,
		ReportType:      core.ReportType(row.ReportType),
		Every:           core.Frequency(row.Every),
		StartDate:       start,
		CompareLastYear: row.CompareLastYear != 0,
	}
	if row.EndDate.Valid && row.EndDate.String != "" {
		if s.EndDate, err = core.ParseDate(row.EndDate.String); err != nil {
			return core.ReportSchedule{}, err
		}
	}
	if row.LastRunAt.Valid {
		if s.LastRunAt, err = time.Parse(timeLayout, row.LastRunAt.String); err != nil {
			return core.ReportSchedule{}, err
		}
	}
	return s, nil
}

func (r *SQLiteRepository) MarkScheduleRun(ctx context.Context, id string, at time.Time) error {
	n, err := r.queries.UpdateScheduleLastRun(ctx, id, at.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("update schedule last run: %w", err)
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteSchedule(ctx context.Context, id string) error {
	n, err := r.queries.DeleteSchedule(ctx, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
