package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Cash       AccountType = "cash"
	Bank       AccountType = "bank"
	Asset      AccountType = "asset"
	Liability  AccountType = "liability"
	CreditCard AccountType = "credit_card"
)

const (
	ProfitLossReport   ReportType = "profit-loss"
	BalanceSheetReport ReportType = "balance-sheet"
	CashFlowReport     ReportType = "cash-flow"
)

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
	Weekly  Frequency = "weekly"
	Daily   Frequency = "daily"
)

// UncategorizedCategory is the bucket used for transactions without a category.
const UncategorizedCategory = "Uncategorized"

const dateLayout = "2006-01-02"

type (
	TransactionType string
	AccountType     string
	ReportType      string
	Frequency       string

	// Date is a calendar date stored as UTC midnight.
	Date struct {
		time.Time
	}

	// Period is an inclusive range of calendar dates.
	Period struct {
		Start Date `json:"startDate"`
		End   Date `json:"endDate"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		CompanyID   string          `json:"companyId"`
		Date        Date            `json:"date"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category,omitempty"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
		CreatedBy   string          `json:"createdBy,omitempty"`
	}

	Account struct {
		ID             string      `json:"id"`
		CompanyID      string      `json:"companyId"`
		Name           string      `json:"name,omitempty"`
		Type           AccountType `json:"type"`
		Category       string      `json:"category,omitempty"` // distinguishes fixed from current assets
		InitialBalance Money       `json:"initialBalance"`
		CurrentBalance Money       `json:"currentBalance"`
	}

	// ReportSchedule asks for a report to be regenerated on a fixed cadence.
	ReportSchedule struct {
		ID              string
		CompanyID       string
		ReportType      ReportType
		Every           Frequency
		StartDate       Date
		EndDate         Date // optional
		CompareLastYear bool
		LastRunAt       time.Time
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrMissingCompany    = errors.New("missing company id")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidAccount    = errors.New("invalid account type")
	ErrInvalidReportType = errors.New("invalid report type")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddDays returns the date n calendar days later (or earlier when n < 0).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Calendar drops the time of day and the location, keeping the year, month
// and day as seen in d's own location.
func (d Date) Calendar() Date {
	if d.IsZero() {
		return d
	}
	return DateOf(d.Time)
}

// Before reports whether d is on an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Calendar().Time.Before(o.Calendar().Time)
}

// After reports whether d is on a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.Calendar().Time.After(o.Calendar().Time)
}

// MonthKey returns the YYYY-MM bucket label of the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewPeriod builds a period and validates it.
func NewPeriod(start, end Date) (Period, error) {
	p := Period{Start: start, End: end}
	return p, p.Validate()
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidPeriod)
	}
	if p.Start.After(p.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, p.Start, p.End)
	}
	return nil
}

// Contains reports whether d falls inside the inclusive period.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// MonthKeys lists every YYYY-MM spanned by the period in ascending order.
func (p Period) MonthKeys() []string {
	var keys []string
	cur := NewDate(p.Start.Year(), p.Start.Month(), 1)
	last := NewDate(p.End.Year(), p.End.Month(), 1)
	for !cur.After(last) {
		keys = append(keys, cur.MonthKey())
		cur = Date{Time: cur.AddDate(0, 1, 0)}
	}
	return keys
}

func (p Period) String() string {
	return p.Start.String() + ".." + p.End.String()
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t AccountType) IsValid() bool {
	switch t {
	case Cash, Bank, Asset, Liability, CreditCard:
		return true
	default:
		return false
	}
}

func (t ReportType) IsValid() bool {
	switch t {
	case ProfitLossReport, BalanceSheetReport, CashFlowReport:
		return true
	default:
		return false
	}
}

// CategoryOrDefault returns the trimmed category, or the Uncategorized bucket.
func (t Transaction) CategoryOrDefault() string {
	c := strings.TrimSpace(t.Category)
	if c == "" {
		return UncategorizedCategory
	}
	return c
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.CompanyID) == "" {
		return ErrMissingCompany
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.CompanyID) == "" {
		return ErrMissingCompany
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, a.Type)
	}
	return nil
}

func (s ReportSchedule) Validate() error {
	if strings.TrimSpace(s.CompanyID) == "" {
		return ErrMissingCompany
	}
	if !s.ReportType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReportType, s.ReportType)
	}

	if err := s.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}

	if !s.EndDate.IsZero() {
		if err := s.EndDate.Validate(); err != nil {
			return errors.New("invalid end date: " + err.Error())
		}
		if s.EndDate.Before(s.StartDate) {
			return errors.New("end date must be after start date")
		}
	}

	switch s.Every {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return errors.New("invalid repetition type")
	}

	return nil
}

// ActiveOn reports whether the schedule window covers the given date.
func (s ReportSchedule) ActiveOn(d Date) bool {
	if d.Before(s.StartDate) {
		return false
	}
	return s.EndDate.IsZero() || !d.After(s.EndDate)
}
