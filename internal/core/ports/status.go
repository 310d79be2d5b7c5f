package ports

import (
	"context"
	"encoding/json"

	"go.trai.ch/vigil/internal/core/domain"
)

//go:generate mockgen -source=status.go -destination=mocks/mock_status.go -package=mocks

// StatusPublisher exposes the session state to out-of-process observers.
type StatusPublisher interface {
	// Serve blocks serving status until ctx is done.
	Serve(ctx context.Context) error
	// SetConnState records the latest stream state.
	SetConnState(state domain.ConnState)
}

// MutationRunner executes mutations inside a running session, so the
// session's cache sees the invalidations that follow.
type MutationRunner interface {
	Execute(ctx context.Context, kind domain.MutationKind, payload json.RawMessage) (*domain.MutationRecord, error)
}

// StatusReport is what an observer learns about a running session.
type StatusReport struct {
	Session string
	Stream  string
}

// StatusClient queries a running session.
type StatusClient interface {
	Status(ctx context.Context) (*StatusReport, error)
	// Mutate submits a mutation through the session's pipeline. It fails with
	// domain.ErrStatusUnavailable when no session accepts it.
	Mutate(ctx context.Context, kind domain.MutationKind, payload json.RawMessage) (*domain.MutationRecord, error)
	Close() error
}

// StatusConnector opens both ends of the status socket.
type StatusConnector interface {
	// Publisher returns a publisher that will listen on socketPath. A non-nil
	// runner also accepts mutations from other processes.
	Publisher(socketPath string, runner MutationRunner) StatusPublisher
	// Dial connects to a session listening on socketPath.
	Dial(socketPath string) (StatusClient, error)
}
