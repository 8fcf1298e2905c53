package services

import (
	"context"
	"time"

	"rendiconto/internal/amqp"
	"rendiconto/internal/core"
	"rendiconto/internal/reports"
)

// ReportStore persists generated reports. The store assigns an ID to a report
// without one; saving a report that has an ID replaces the stored copy.
type ReportStore interface {
	SaveReport(ctx context.Context, rep *reports.Report) (string, error)
	GetReport(ctx context.Context, id string) (*reports.Report, error)
	ListReports(ctx context.Context, companyID string, limit int) ([]*reports.Report, error)
}

// ScheduleStore persists report schedules.
type ScheduleStore interface {
	SaveSchedule(ctx context.Context, s core.ReportSchedule) (string, error)
	ActiveSchedules(ctx context.Context, day core.Date) ([]core.ReportSchedule, error)
	MarkScheduleRun(ctx context.Context, id string, at time.Time) error
	DeleteSchedule(ctx context.Context, id string) error
}

// Notifier announces freshly stored reports.
type Notifier interface {
	PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
}

// RequestPublisher enqueues report requests for a worker.
type RequestPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

var (
	_ Notifier         = (*amqp.Client)(nil)
	_ RequestPublisher = (*amqp.Client)(nil)
)
