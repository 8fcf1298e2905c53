package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rendiconto/internal/amqp"
	"rendiconto/internal/core"
	"rendiconto/internal/reports"
)

// Dispatcher hands a due report request over for generation.
type Dispatcher interface {
	Dispatch(ctx context.Context, req reports.Request, scheduleID string) error
}

// QueueDispatcher enqueues requests on the AMQP report queue.
type QueueDispatcher struct {
	Publisher RequestPublisher
}

func (d QueueDispatcher) Dispatch(ctx context.Context, req reports.Request, scheduleID string) error {
	return d.Publisher.PublishReportRequest(ctx, amqp.NewReportRequestMessage(req, scheduleID))
}

// DirectDispatcher generates and stores reports in-process.
type DirectDispatcher struct {
	Service *ReportService
}

func (d DirectDispatcher) Dispatch(ctx context.Context, req reports.Request, _ string) error {
	_, err := d.Service.GenerateAndSave(ctx, req)
	return err
}

// ScheduleProcessor runs the report schedules that are due.
type ScheduleProcessor struct {
	store      ScheduleStore
	dispatcher Dispatcher
}

func NewScheduleProcessor(store ScheduleStore, dispatcher Dispatcher) *ScheduleProcessor {
	return &ScheduleProcessor{
		store:      store,
		dispatcher: dispatcher,
	}
}

// Schedule validates and stores a new schedule.
func (p *ScheduleProcessor) Schedule(ctx context.Context, s core.ReportSchedule) (string, error) {
	if p.store == nil {
		return "", errors.New("processor not properly initialized")
	}
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if _, err := GetDuenessChecker(s.Every); err != nil {
		return "", err
	}
	return p.store.SaveSchedule(ctx, s)
}

// Unschedule removes a stored schedule.
func (p *ScheduleProcessor) Unschedule(ctx context.Context, id string) error {
	if p.store == nil {
		return errors.New("processor not properly initialized")
	}
	if id == "" {
		return errors.New("schedule id is required")
	}
	return p.store.DeleteSchedule(ctx, id)
}

// ProcessDue dispatches a request for every active schedule due at now and
// returns how many were dispatched. Failures of single schedules are logged
// and do not stop the run.
func (p *ScheduleProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.dispatcher == nil {
		return 0, errors.New("processor not properly initialized")
	}
	now = now.UTC()
	runDate := core.DateOf(now)

	schedules, err := p.store.ActiveSchedules(ctx, runDate)
	if err != nil {
		return 0, fmt.Errorf("failed to get active schedules: %w", err)
	}

	slog.InfoContext(ctx, "Processing report schedules",
		"total_active", len(schedules),
		"processing_date", runDate.String())

	processed := 0
	for _, s := range schedules {
		checker, err := GetDuenessChecker(s.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if schedule is due",
				"schedule_id", s.ID, "error", err)
			continue
		}
		if !checker.IsDue(s.LastRunAt, now, s.StartDate) {
			continue
		}

		req := RequestFor(s, checker, runDate)
		if err := p.dispatcher.Dispatch(ctx, req, s.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to dispatch scheduled report",
				"schedule_id", s.ID,
				"company_id", s.CompanyID,
				"report_type", s.ReportType,
				"error", err)
			continue
		}

		if err := p.store.MarkScheduleRun(ctx, s.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update schedule last run",
				"schedule_id", s.ID, "error", err)
			// the request is already out
		}

		processed++
		slog.InfoContext(ctx, "Dispatched scheduled report",
			"schedule_id", s.ID,
			"company_id", s.CompanyID,
			"report_type", s.ReportType,
			"frequency", s.Every)
	}

	slog.InfoContext(ctx, "Report schedule processing complete",
		"processed", processed,
		"total_checked", len(schedules))

	return processed, nil
}

// RequestFor builds the request of a schedule run on runDate. Balance sheets
// are taken as of the run date; other reports cover the period closed by it.
func RequestFor(s core.ReportSchedule, checker DuenessChecker, runDate core.Date) reports.Request {
	req := reports.Request{
		Type:      s.ReportType,
		CompanyID: s.CompanyID,
	}
	if s.ReportType == core.BalanceSheetReport {
		req.AsOf = runDate
		return req
	}
	req.Period = checker.Period(runDate)
	req.CompareLastYear = s.CompareLastYear && s.ReportType == core.ProfitLossReport
	return req
}
