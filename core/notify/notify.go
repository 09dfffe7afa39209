package notify

import (
	"flightsurety/core/logger"
)

// NotificationType represents who a notification is meant for.
type NotificationType string

const (
	NotifyAdmin NotificationType = "admin"
	NotifyUser  NotificationType = "user"
)

// Notification is an operator-facing alert, e.g. an event that could not be
// delivered to an external sink.
type Notification struct {
	Subject   string
	Reason    string
	Attempt   int
	Type      NotificationType
	Recipient string
}

// Notify logs the notification.
func Notify(n Notification) {
	logger.Internal.Warn().
		Str("recipient", n.Recipient).
		Str("type", string(n.Type)).
		Str("subject", n.Subject).
		Int("attempt", n.Attempt).
		Msg(n.Reason)
}

func notifyAdmin(subject, reason string, attempt int) {
	Notify(Notification{
		Subject:   subject,
		Reason:    reason,
		Attempt:   attempt,
		Type:      NotifyAdmin,
		Recipient: "operator",
	})
}
