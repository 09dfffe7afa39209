package validation

import (
	"time"

	"flightsurety/core/audit"
)

var auditLogger audit.AuditLogger = audit.NewZerologAuditLogger()

// SetAuditLogger replaces the logger receiving validation failures.
func SetAuditLogger(l audit.AuditLogger) {
	auditLogger = l
}

// AuditValidationError records a rejected payload. Only the schema name and
// the validator's messages are logged, never the payload itself.
func AuditValidationError(context, errMsg string) {
	auditLogger.LogEvent(audit.AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: "PayloadValidation",
		EntityID:  context,
		Result:    "failure",
		Reason:    errMsg,
	})
}
