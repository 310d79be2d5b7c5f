package domain

import "time"

// Severity classifies a user-visible notification.
type Severity uint8

const (
	// SeverityInfo is used for successful outcomes.
	SeverityInfo Severity = iota
	// SeverityError is used for terminal failures.
	SeverityError
)

// Notification is a single user-visible message. The engine emits one per
// terminal stream failure and one per mutation outcome.
type Notification struct {
	Severity Severity
	Source   string
	Message  string
	Err      error
	At       time.Time
}
