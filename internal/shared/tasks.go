// Package shared holds the task names and queue names used by both the
// API and the worker binaries.
package shared

const (
	TypeSendOverdueReminders = "borrow:send_overdue_reminders"
	TypeCleanupExpiredCodes  = "user:cleanup_expired_codes"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)
