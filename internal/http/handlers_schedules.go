package http

import (
	"fmt"
	"net/http"

	"rendiconto/internal/log"
	"rendiconto/internal/services"
)

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeError(w, r, log.OpCreate, services.ErrNoStore)
		return
	}

	var body scheduleBody
	if err := DecodeJSON(w, r, &body); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	sched := body.schedule()
	if err := sched.Validate(); err != nil {
		writeError(w, r, log.OpValidate, fmt.Errorf("%w: %v", ErrInvalidParameter, err))
		return
	}

	id, err := s.schedules.Schedule(r.Context(), sched)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Report schedule created",
		log.FieldScheduleID, id,
		log.FieldCompanyID, sched.CompanyID,
		log.FieldReportType, string(sched.ReportType),
		"frequency", string(sched.Every))

	NewResponse().
		Status(http.StatusCreated).
		JSON(map[string]string{"id": id}).
		Write(w)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeError(w, r, log.OpDelete, services.ErrNoStore)
		return
	}
	if err := s.schedules.Unschedule(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
