package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rendiconto/internal/amqp"
	"rendiconto/internal/log"
	"rendiconto/internal/reports"
)

// Generator produces and stores reports under a given ID, replacing any
// report already stored under it.
type Generator interface {
	GenerateAndSaveAs(ctx context.Context, id string, req reports.Request) (*reports.Report, error)
}

// ReportWorker handles report requests consumed from AMQP.
type ReportWorker struct {
	generator Generator
	logger    *log.StructuredLogger
}

func NewReportWorker(generator Generator, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportWorker{
		generator: generator,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker)),
	}
}

// HandleReportRequest generates and stores the requested report under the
// message's request ID, so a redelivered message replaces the report instead
// of adding another. Requests that can never succeed are logged and
// acknowledged; any other failure is returned so the message is requeued.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	req := msg.Request
	slog.InfoContext(ctx, "Processing report request",
		"request_id", msg.RequestID,
		"schedule_id", msg.ScheduleID,
		"company_id", req.CompanyID,
		"report_type", req.Type)

	start := time.Now()
	rep, err := w.generator.GenerateAndSaveAs(ctx, msg.RequestID, req)
	if err != nil {
		if reports.IsPrecondition(err) {
			slog.WarnContext(ctx, "Dropping invalid report request",
				"request_id", msg.RequestID,
				"error", err)
			return nil
		}
		return fmt.Errorf("generate report: %w", err)
	}

	var period, asOf string
	if rep.Period != nil {
		period = rep.Period.String()
	}
	if rep.AsOf != nil {
		asOf = rep.AsOf.String()
	}
	w.logger.LogReportGenerated(ctx, rep.ID, rep.CompanyID, string(rep.Type), period, asOf,
		time.Since(start).Milliseconds())
	return nil
}
