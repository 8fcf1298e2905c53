package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"rendiconto/internal/log"
	"rendiconto/internal/middleware/ratelimit"
	"rendiconto/internal/middleware/security"
	"rendiconto/internal/middleware/trace"
	"rendiconto/internal/services"
)

// Options configures the optional collaborators of a Server.
type Options struct {
	// Schedules enables the schedule endpoints when set.
	Schedules *services.ScheduleProcessor

	// Ready is consulted by /readyz. A nil Ready always reports ready.
	Ready func(ctx context.Context) error

	Logger *log.Logger

	// RequestsPerMinute limits report generation and schedule writes per client.
	RequestsPerMinute int

	// BlockSuspicious rejects requests the detector flags instead of only logging them.
	BlockSuspicious bool
}

type Server struct {
	http.Server
	reports   *services.ReportService
	schedules *services.ScheduleProcessor
	ready     func(ctx context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.ReportService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	detector := security.NewDetector()
	s := &Server{
		reports:   svc,
		schedules: opts.Schedules,
		ready:     opts.Ready,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:  detector,
		tracer:    trace.NewMiddleware(detector.ExtractClientIP),
	}

	limited := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/reports/profit-loss", s.handleProfitLoss)
	mux.HandleFunc("GET /api/reports/balance-sheet", s.handleBalanceSheet)
	mux.HandleFunc("GET /api/reports/cash-flow", s.handleCashFlow)
	mux.HandleFunc("GET /api/reports/statements", s.handleStatements)
	mux.Handle("POST /api/reports", limited(http.HandlerFunc(s.handleCreateReport)))
	mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)

	mux.HandleFunc("GET /api/companies/{company}/reports", s.handleListReports)
	mux.HandleFunc("DELETE /api/companies/{company}/cache", s.handleInvalidateCompany)

	mux.Handle("POST /api/schedules", limited(http.HandlerFunc(s.handleCreateSchedule)))
	mux.HandleFunc("DELETE /api/schedules/{id}", s.handleDeleteSchedule)

	var handler http.Handler = mux
	handler = log.ComponentMiddleware(log.ComponentHTTP)(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = detector.Middleware(opts.BlockSuspicious)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns the request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			ErrorResponse(http.StatusServiceUnavailable, "not ready", trace.GetRequestID(r.Context())).Write(w)
			return
		}
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
