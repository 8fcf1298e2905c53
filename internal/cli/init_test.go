package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"rendiconto/internal/backend"
	"rendiconto/internal/config"
	"rendiconto/internal/core"
	"rendiconto/internal/ledger/memory"
	"rendiconto/internal/log"
	"rendiconto/internal/reports"
	"rendiconto/internal/services"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug", log.ComponentCLI)
	if logger.Component() != log.ComponentCLI {
		t.Errorf("Component() = %q", logger.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected the default logger to log at debug level")
	}
}

func TestNewServices(t *testing.T) {
	store := memory.New([]core.Transaction{
		{ID: "1", CompanyID: "acme", Date: core.NewDate(2025, 1, 5), Amount: core.Cents(1000), Type: core.Income},
	}, nil)
	res := &backend.BackendResult{Ledger: store}
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})

	tests := []struct {
		name      string
		cacheSize int
		wantHits  int
	}{
		{"cached", 8, 1},
		{"uncached", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{ReportCacheSize: tt.cacheSize, ReportCacheTTL: time.Minute, ReaderTimeout: time.Second}
			svcs := NewServices(logger, cfg, res, nil)
			t.Cleanup(svcs.Close)

			req := reports.Request{
				Type: core.CashFlowReport, CompanyID: "acme",
				Period: core.Period{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)},
			}
			if _, err := svcs.Reports.Generate(context.Background(), req); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := svcs.Reports.InvalidateCompany("acme"); got != tt.wantHits {
				t.Errorf("InvalidateCompany() = %d, want %d", got, tt.wantHits)
			}
			if _, err := svcs.Reports.GenerateAndSave(context.Background(), req); !errors.Is(err, services.ErrNoStore) {
				t.Errorf("expected ErrNoStore without a report store, got %v", err)
			}
		})
	}
}

func TestCloseBackend(t *testing.T) {
	calls := 0
	CloseBackend(log.New(log.DefaultConfig()), &backend.BackendResult{Cleanup: func() error {
		calls++
		return nil
	}})
	CloseBackend(log.New(log.DefaultConfig()), nil)
	if calls != 1 {
		t.Errorf("cleanup called %d times", calls)
	}
}
