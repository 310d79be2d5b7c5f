package tui

import (
	"time"

	"go.trai.ch/vigil/internal/core/domain"
)

// MsgEntry reports a changed cache entry.
type MsgEntry struct {
	Entry domain.CacheEntry
}

// MsgConnState reports a stream transition.
type MsgConnState struct {
	State domain.ConnState
}

// MsgNotification carries a user-visible notification.
type MsgNotification struct {
	Notification domain.Notification
}

// MsgActivity reports a completed traced operation.
type MsgActivity struct {
	Name     string
	Duration time.Duration
	Err      error
}

type msgTick time.Time
