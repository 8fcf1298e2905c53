package storage

import (
	"context"
	"database/sql"
)

const createTransaction = `
INSERT INTO transactions (company_id, date, amount_cents, type, category, description, created_at, created_by)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	CompanyID   string
	Date        string
	AmountCents int64
	Type        string
	Category    string
	Description string
	CreatedAt   string
	CreatedBy   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.CompanyID,
		arg.Date,
		arg.AmountCents,
		arg.Type,
		arg.Category,
		arg.Description,
		arg.CreatedAt,
		arg.CreatedBy,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listTransactions = `
SELECT id, company_id, date, amount_cents, type, category, description, created_at, created_by
FROM transactions
WHERE company_id = ?
  AND (? = '' OR date >= ?)
  AND (? = '' OR date <= ?)
  AND (? = '' OR type = ?)
ORDER BY date, id
`

// Empty bounds and type are ignored.
type ListTransactionsParams struct {
	CompanyID string
	StartDate string
	EndDate   string
	Type      string
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.CompanyID,
		arg.StartDate, arg.StartDate,
		arg.EndDate, arg.EndDate,
		arg.Type, arg.Type,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.CompanyID,
			&i.Date,
			&i.AmountCents,
			&i.Type,
			&i.Category,
			&i.Description,
			&i.CreatedAt,
			&i.CreatedBy,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createAccount = `
INSERT INTO accounts (company_id, name, type, category, initial_balance_cents, current_balance_cents)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateAccountParams struct {
	CompanyID           string
	Name                string
	Type                string
	Category            string
	InitialBalanceCents int64
	CurrentBalanceCents int64
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.CompanyID,
		arg.Name,
		arg.Type,
		arg.Category,
		arg.InitialBalanceCents,
		arg.CurrentBalanceCents,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateAccountBalance = `
UPDATE accounts SET current_balance_cents = ? WHERE id = ?
`

func (q *Queries) UpdateAccountBalance(ctx context.Context, id int64, cents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccountBalance, cents, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listAccounts = `
SELECT id, company_id, name, type, category, initial_balance_cents, current_balance_cents
FROM accounts
WHERE company_id = ?
ORDER BY id
`

func (q *Queries) ListAccounts(ctx context.Context, companyID string) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.CompanyID,
			&i.Name,
			&i.Type,
			&i.Category,
			&i.InitialBalanceCents,
			&i.CurrentBalanceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertReport = `
INSERT INTO reports (id, company_id, report_type, period_start, period_end, as_of, payload, generated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    payload = excluded.payload,
    generated_at = excluded.generated_at
`

type UpsertReportParams struct {
	ID          string
	CompanyID   string
	ReportType  string
	PeriodStart sql.NullString
	PeriodEnd   sql.NullString
	AsOf        sql.NullString
	Payload     string
	GeneratedAt string
}

func (q *Queries) UpsertReport(ctx context.Context, arg UpsertReportParams) error {
	_, err := q.db.ExecContext(ctx, upsertReport,
		arg.ID,
		arg.CompanyID,
		arg.ReportType,
		arg.PeriodStart,
		arg.PeriodEnd,
		arg.AsOf,
		arg.Payload,
		arg.GeneratedAt,
	)
	return err
}

const getReport = `
SELECT id, company_id, report_type, period_start, period_end, as_of, payload, generated_at
FROM reports
WHERE id = ?
`

func (q *Queries) GetReport(ctx context.Context, id string) (Report, error) {
	row := q.db.QueryRowContext(ctx, getReport, id)
	var i Report
	err := row.Scan(
		&i.ID,
		&i.CompanyID,
		&i.ReportType,
		&i.PeriodStart,
		&i.PeriodEnd,
		&i.AsOf,
		&i.Payload,
		&i.GeneratedAt,
	)
	return i, err
}

const listReportsByCompany = `
SELECT id, company_id, report_type, period_start, period_end, as_of, payload, generated_at
FROM reports
WHERE company_id = ?
ORDER BY generated_at DESC, id
LIMIT ?
`

func (q *Queries) ListReportsByCompany(ctx context.Context, companyID string, limit int64) ([]Report, error) {
	rows, err := q.db.QueryContext(ctx, listReportsByCompany, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Report
	for rows.Next() {
		var i Report
		if err := rows.Scan(
			&i.ID,
			&i.CompanyID,
			&i.ReportType,
			&i.PeriodStart,
			&i.PeriodEnd,
			&i.AsOf,
			&i.Payload,
			&i.GeneratedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createSchedule = `
INSERT INTO report_schedules (id, company_id, report_type, every, start_date, end_date, compare_last_year, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateScheduleParams struct {
	ID              string
	CompanyID       string
	ReportType      string
	Every           string
	StartDate       string
	EndDate         sql.NullString
	CompareLastYear int64
	CreatedAt       string
}

func (q *Queries) CreateSchedule(ctx context.Context, arg CreateScheduleParams) error {
	_, err := q.db.ExecContext(ctx, createSchedule,
		arg.ID,
		arg.CompanyID,
		arg.ReportType,
		arg.Every,
		arg.StartDate,
		arg.EndDate,
		arg.CompareLastYear,
		arg.CreatedAt,
	)
	return err
}

const listActiveSchedules = `
SELECT id, company_id, report_type, every, start_date, end_date, compare_last_year, last_run_at, created_at
FROM report_schedules
WHERE start_date <= ?
  AND (end_date IS NULL OR end_date >= ?)
ORDER BY created_at, id
`

func (q *Queries) ListActiveSchedules(ctx context.Context, day string) ([]ReportSchedule, error) {
	rows, err := q.db.QueryContext(ctx, listActiveSchedules, day, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReportSchedule
	for rows.Next() {
		var i ReportSchedule
		if err := rows.Scan(
			&i.ID,
			&i.CompanyID,
			&i.ReportType,
			&i.Every,
			&i.StartDate,
			&i.EndDate,
			&i.CompareLastYear,
			&i.LastRunAt,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateScheduleLastRun = `
UPDATE report_schedules SET last_run_at = ? WHERE id = ?
`

func (q *Queries) UpdateScheduleLastRun(ctx context.Context, id string, lastRunAt string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateScheduleLastRun, lastRunAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteSchedule = `
DELETE FROM report_schedules WHERE id = ?
`

func (q *Queries) DeleteSchedule(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSchedule, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
