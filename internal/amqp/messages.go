package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"rendiconto/internal/core"
	"rendiconto/internal/reports"
)

// ReportRequestMessage asks a worker to generate (and store) one report.
// RequestID lets consumers recognise redeliveries.
type ReportRequestMessage struct {
	RequestID  string          `json:"requestId"`
	Request    reports.Request `json:"request"`
	ScheduleID string          `json:"scheduleId,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

func NewReportRequestMessage(req reports.Request, scheduleID string) *ReportRequestMessage {
	return &ReportRequestMessage{
		RequestID:  uuid.NewString(),
		Request:    req,
		ScheduleID: scheduleID,
		Timestamp:  time.Now(),
	}
}

func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportGeneratedMessage announces a stored report. It carries the reference
// only; consumers fetch the report by ID.
type ReportGeneratedMessage struct {
	ReportID    string          `json:"reportId"`
	CompanyID   string          `json:"companyId"`
	ReportType  core.ReportType `json:"reportType"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Timestamp   time.Time       `json:"timestamp"`
}

func NewReportGeneratedMessage(rep *reports.Report) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		ReportID:    rep.ID,
		CompanyID:   rep.CompanyID,
		ReportType:  rep.Type,
		GeneratedAt: rep.GeneratedAt,
		Timestamp:   time.Now(),
	}
}

func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
