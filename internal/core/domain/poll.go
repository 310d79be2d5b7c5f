package domain

import "time"

// PollTask is the refresh schedule of one polled key.
type PollTask struct {
	Key       DomainKey
	Interval  time.Duration
	LastRunAt time.Time
	InFlight  bool
}

// Due reports whether the task should start a fetch at now.
// A task that never ran is due immediately.
func (t PollTask) Due(now time.Time) bool {
	if t.InFlight {
		return false
	}
	return t.LastRunAt.IsZero() || now.Sub(t.LastRunAt) >= t.Interval
}
