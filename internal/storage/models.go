package storage

import "database/sql"

type Transaction struct {
	ID          int64
	CompanyID   string
	Date        string
	AmountCents int64
	Type        string
	Category    string
	Description string
	CreatedAt   string
	CreatedBy   string
}

type Account struct {
	ID                  int64
	CompanyID           string
	Name                string
	Type                string
	Category            string
	InitialBalanceCents int64
	CurrentBalanceCents int64
}

type Report struct {
	ID          string
	CompanyID   string
	ReportType  string
	PeriodStart sql.NullString
	PeriodEnd   sql.NullString
	AsOf        sql.NullString
	Payload     string
	GeneratedAt string
}

type ReportSchedule struct {
	ID              string
	CompanyID       string
	ReportType      string
	Every           string
	StartDate       string
	EndDate         sql.NullString
	CompareLastYear int64
	LastRunAt       sql.NullString
	CreatedAt       string
}
