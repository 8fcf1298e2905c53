package http

import (
	"net/http"
	"time"

	"rendiconto/internal/core"
	"rendiconto/internal/log"
	"rendiconto/internal/reports"
)

func (s *Server) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, core.ProfitLossReport)
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, core.BalanceSheetReport)
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, core.CashFlowReport)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, typ core.ReportType) {
	req, err := ParseReportQuery(typ, r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}

	rep, err := s.reports.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, log.OpGenerate, err)
		return
	}
	NewResponse().JSON(rep).Write(w)
}

// handleStatements returns all three statements for one period. The balance
// sheet is taken at the end of the period.
func (s *Server) handleStatements(w http.ResponseWriter, r *http.Request) {
	req, err := ParseReportQuery(core.ProfitLossReport, r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}

	out, err := s.reports.GenerateAll(r.Context(), req.CompanyID, req.Period, req.CompareLastYear)
	if err != nil {
		writeError(w, r, log.OpGenerate, err)
		return
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req reports.Request
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	req.CompanyID = sanitizeInput(req.CompanyID)

	start := time.Now()
	rep, err := s.reports.GenerateAndSave(r.Context(), req)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).LogReportGenerated(r.Context(),
		rep.ID, rep.CompanyID, string(rep.Type), periodString(rep), asOfString(rep), time.Since(start).Milliseconds())

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/reports/"+rep.ID).
		JSON(rep).
		Write(w)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.GetReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().JSON(rep).Write(w)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}

	list, err := s.reports.ListReports(r.Context(), sanitizeInput(r.PathValue("company")), limit)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if list == nil {
		list = []*reports.Report{}
	}
	NewResponse().JSON(map[string]any{"reports": list, "count": len(list)}).Write(w)
}

// handleInvalidateCompany drops cached reports after a company's ledger changed.
func (s *Server) handleInvalidateCompany(w http.ResponseWriter, r *http.Request) {
	company := sanitizeInput(r.PathValue("company"))
	removed := s.reports.InvalidateCompany(company)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Report cache invalidated",
		log.FieldCompanyID, company, "removed", removed)
	NewResponse().JSON(map[string]int{"removed": removed}).Write(w)
}

func periodString(rep *reports.Report) string {
	if rep.Period == nil {
		return ""
	}
	return rep.Period.String()
}

func asOfString(rep *reports.Report) string {
	if rep.AsOf == nil {
		return ""
	}
	return rep.AsOf.String()
}
