package domain

import (
	"fmt"
	"time"
)

// ConnPhase is the coarse state of the stream subscription.
type ConnPhase uint8

const (
	// PhaseIdle is the state before the first connect.
	PhaseIdle ConnPhase = iota
	// PhaseConnecting means a dial and handshake are in progress.
	PhaseConnecting
	// PhaseConnected means the server acknowledged the subscription.
	PhaseConnected
	// PhaseReconnecting means the manager is waiting out a backoff delay.
	PhaseReconnecting
	// PhaseFailed means the attempt ceiling was exceeded. Only an explicit connect leaves it.
	PhaseFailed
	// PhaseClosed is terminal.
	PhaseClosed
)

// String returns the display name of the phase.
func (p ConnPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseFailed:
		return "failed"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// ConnState is the full stream connection state.
// Attempt counts consecutive failed connection attempts and is reset on Connected.
type ConnState struct {
	Phase     ConnPhase
	Attempt   int
	NextDelay time.Duration
}

// String renders the state, including the retry details while reconnecting.
func (s ConnState) String() string {
	if s.Phase == PhaseReconnecting {
		return fmt.Sprintf("reconnecting(%d, %s)", s.Attempt, s.NextDelay)
	}
	return s.Phase.String()
}

// BackoffPolicy bounds reconnect behavior.
type BackoffPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Ceiling   int
}

// DefaultBackoffPolicy returns the stock policy: 1s base, 30s cap, 5 attempts.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
		Ceiling:   5,
	}
}

// Delay returns the wait before attempt n (1-based): min(base * 2^(n-1), max).
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
