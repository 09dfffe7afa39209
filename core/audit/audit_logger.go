package audit

import (
	"time"

	"flightsurety/core/logger"
)

// AuditEvent records a decision taken on behalf of a caller, typically a
// rejected operation or an authentication failure.
type AuditEvent struct {
	Timestamp time.Time
	EventType string // e.g. "BuyInsurance", "TokenVerification"
	EntityID  string // caller address or token subject
	Result    string // "success" or "failure"
	Reason    string
	Metadata  map[string]string
}

// AuditLogger is the interface for logging audit events.
type AuditLogger interface {
	LogEvent(event AuditEvent)
}

// ZerologAuditLogger writes audit events to the audit component logger.
type ZerologAuditLogger struct{}

func (l *ZerologAuditLogger) LogEvent(event AuditEvent) {
	evt := logger.Audit.Info()
	if event.Result == "failure" {
		evt = logger.Audit.Warn()
	}
	evt = evt.Time("at", event.Timestamp).
		Str("type", event.EventType).
		Str("entity", event.EntityID).
		Str("result", event.Result).
		Str("reason", event.Reason)
	if len(event.Metadata) > 0 {
		evt = evt.Interface("metadata", event.Metadata)
	}
	evt.Send()
}

func NewZerologAuditLogger() AuditLogger {
	return &ZerologAuditLogger{}
}

// NopAuditLogger drops every event.
type NopAuditLogger struct{}

func (NopAuditLogger) LogEvent(AuditEvent) {}
