package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rendiconto/internal/amqp"
	"rendiconto/internal/cache"
	"rendiconto/internal/core"
	"rendiconto/internal/reports"
)

// ErrNoStore is returned by operations that need a report store when none is configured.
var ErrNoStore = errors.New("report store not configured")

// ReportService orchestrates report generation across the engine, the
// report cache, the report store and the AMQP notifier. Everything but the
// engine is optional.
type ReportService struct {
	engine        *reports.Engine
	store         ReportStore
	notifier      Notifier
	cache         cache.Cache[*reports.Report]
	readerTimeout time.Duration
}

type ReportServiceOptions struct {
	Store         ReportStore
	Notifier      Notifier
	Cache         cache.Cache[*reports.Report]
	ReaderTimeout time.Duration
}

func NewReportService(engine *reports.Engine, opts ReportServiceOptions) *ReportService {
	return &ReportService{
		engine:        engine,
		store:         opts.Store,
		notifier:      opts.Notifier,
		cache:         opts.Cache,
		readerTimeout: opts.ReaderTimeout,
	}
}

// Statements groups the three statements generated for one period.
type Statements struct {
	ProfitLoss   *reports.Report `json:"profitLoss"`
	BalanceSheet *reports.Report `json:"balanceSheet"`
	CashFlow     *reports.Report `json:"cashFlow"`
}

// Generate returns the requested report, serving it from the cache when a
// fresh copy exists. Cached reports are shared and must not be modified.
func (s *ReportService) Generate(ctx context.Context, req reports.Request) (*reports.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := req.Key()
	if s.cache != nil {
		if rep, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Report served from cache", "key", key)
			return rep, nil
		}
	}
	rep, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, rep)
	}
	return rep, nil
}

func (s *ReportService) generate(ctx context.Context, req reports.Request) (*reports.Report, error) {
	if s.readerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readerTimeout)
		defer cancel()
	}
	return s.engine.Generate(ctx, req)
}

// GenerateAll builds the profit and loss statement, the cash flow statement
// for period and the balance sheet as of its last day, concurrently.
func (s *ReportService) GenerateAll(ctx context.Context, companyID string, period core.Period, compareLastYear bool) (*Statements, error) {
	var out Statements
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep, err := s.Generate(gctx, reports.Request{
			Type: core.ProfitLossReport, CompanyID: companyID, Period: period, CompareLastYear: compareLastYear,
		})
		out.ProfitLoss = rep
		return err
	})
	g.Go(func() error {
		rep, err := s.Generate(gctx, reports.Request{
			Type: core.BalanceSheetReport, CompanyID: companyID, AsOf: period.End,
		})
		out.BalanceSheet = rep
		return err
	})
	g.Go(func() error {
		rep, err := s.Generate(gctx, reports.Request{
			Type: core.CashFlowReport, CompanyID: companyID, Period: period,
		})
		out.CashFlow = rep
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAndSave generates a fresh report, bypassing the cache, stores it
// and announces it. A failed announcement is logged but does not fail the call.
func (s *ReportService) GenerateAndSave(ctx context.Context, req reports.Request) (*reports.Report, error) {
	return s.GenerateAndSaveAs(ctx, "", req)
}

// GenerateAndSaveAs is GenerateAndSave under a caller-chosen report ID.
// Saving again under the same ID replaces the stored report. An empty id lets
// the store assign one.
func (s *ReportService) GenerateAndSaveAs(ctx context.Context, id string, req reports.Request) (*reports.Report, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rep, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	rep.ID = id
	id, err = s.store.SaveReport(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	rep.ID = id
	if s.cache != nil {
		s.cache.Set(req.Key(), rep)
	}

	if s.notifier != nil {
		if err := s.notifier.PublishReportGenerated(ctx, amqp.NewReportGeneratedMessage(rep)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish report generated message",
				"report_id", id, "error", err)
		}
	}
	return rep, nil
}

func (s *ReportService) GetReport(ctx context.Context, id string) (*reports.Report, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.GetReport(ctx, id)
}

func (s *ReportService) ListReports(ctx context.Context, companyID string, limit int) ([]*reports.Report, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if companyID == "" {
		return nil, reports.ErrMissingCompany
	}
	return s.store.ListReports(ctx, companyID, limit)
}

// InvalidateCompany drops every cached report of a company and returns how
// many entries were removed.
func (s *ReportService) InvalidateCompany(companyID string) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix(reports.CompanyKeyPrefix(companyID))
}
