package stream

import (
	"time"

	"go.trai.ch/vigil/internal/core/domain"
)

// Event is an input to the connection state machine.
type Event int

const (
	// EventConnect requests a connection.
	EventConnect Event = iota
	// EventHandshakeOK reports that the server acknowledged the subscription.
	EventHandshakeOK
	// EventTransportError reports a failed dial or a dropped connection.
	EventTransportError
	// EventDelayElapsed reports that the retry delay has passed.
	EventDelayElapsed
	// EventClose ends the subscription for good.
	EventClose
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventConnect:
		return "connect"
	case EventHandshakeOK:
		return "handshake-ok"
	case EventTransportError:
		return "transport-error"
	case EventDelayElapsed:
		return "delay-elapsed"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// EffectKind names a side effect the runtime must perform after a transition.
type EffectKind int

const (
	// EffectDial opens a new connection.
	EffectDial EffectKind = iota
	// EffectScheduleRetry arms the retry timer for Effect.Delay.
	EffectScheduleRetry
	// EffectResync refreshes every subscribed domain after (re)connecting.
	EffectResync
	// EffectNotifyFailed tells the user that retries are exhausted.
	EffectNotifyFailed
	// EffectRelease tears down the connection and any pending timer.
	EffectRelease
)

// Effect is one side effect produced by Transition.
type Effect struct {
	Kind  EffectKind
	Delay time.Duration
}

// Transition computes the next connection state for ev. It has no side
// effects; the caller performs the returned effects in order.
func Transition(state domain.ConnState, ev Event, policy domain.BackoffPolicy) (domain.ConnState, []Effect) {
	if state.Phase == domain.PhaseClosed {
		return state, nil
	}

	switch ev {
	case EventClose:
		return domain.ConnState{Phase: domain.PhaseClosed}, []Effect{{Kind: EffectRelease}}

	case EventConnect:
		switch state.Phase {
		case domain.PhaseIdle, domain.PhaseFailed:
			return domain.ConnState{Phase: domain.PhaseConnecting}, []Effect{{Kind: EffectDial}}
		default:
			return state, nil
		}

	case EventHandshakeOK:
		if state.Phase != domain.PhaseConnecting {
			return state, nil
		}
		return domain.ConnState{Phase: domain.PhaseConnected}, []Effect{{Kind: EffectResync}}

	case EventTransportError:
		switch state.Phase {
		case domain.PhaseConnected:
			return retry(1, policy)
		case domain.PhaseConnecting:
			return retry(state.Attempt+1, policy)
		default:
			return state, nil
		}

	case EventDelayElapsed:
		if state.Phase != domain.PhaseReconnecting {
			return state, nil
		}
		return domain.ConnState{Phase: domain.PhaseConnecting, Attempt: state.Attempt}, []Effect{{Kind: EffectDial}}
	}

	return state, nil
}

func retry(attempt int, policy domain.BackoffPolicy) (domain.ConnState, []Effect) {
	if attempt > policy.Ceiling {
		return domain.ConnState{Phase: domain.PhaseFailed, Attempt: attempt - 1}, []Effect{{Kind: EffectNotifyFailed}}
	}
	delay := policy.Delay(attempt)
	return domain.ConnState{
		Phase:     domain.PhaseReconnecting,
		Attempt:   attempt,
		NextDelay: delay,
	}, []Effect{{Kind: EffectScheduleRetry, Delay: delay}}
}
