package ports

import (
	"context"
	"encoding/json"

	"go.trai.ch/vigil/internal/core/domain"
)

//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks

// SnapshotQuerier performs point-in-time reads against the backend.
type SnapshotQuerier interface {
	// Query fetches the current payload for key.
	// Errors are classified with domain.ErrTransport, domain.ErrBackend,
	// domain.ErrProtocol or domain.ErrTimeout.
	Query(ctx context.Context, key domain.DomainKey) (domain.Snapshot, error)
}

// MutationSender submits writes to the backend.
type MutationSender interface {
	// Mutate submits payload for kind and returns the backend acknowledgment.
	Mutate(ctx context.Context, kind domain.MutationKind, payload json.RawMessage) (domain.Ack, error)
}

// StreamDialer opens the server-push channel.
type StreamDialer interface {
	// Dial connects and completes the subscription handshake. It returns only
	// once the server has acknowledged the domain list.
	Dial(ctx context.Context, clientID string, domains []string) (StreamConn, error)
}

// StreamConn is one live subscription.
type StreamConn interface {
	// Recv blocks until the next event arrives or the connection ends.
	// Any error means the connection is gone.
	Recv() (domain.StreamEvent, error)
	// Close releases the underlying transport. It unblocks a pending Recv.
	Close() error
}

// Backend bundles the clients bound to one API root.
type Backend struct {
	Querier SnapshotQuerier
	Sender  MutationSender
	Dialer  StreamDialer
}

// BackendFactory builds clients for the API described by cfg.
type BackendFactory interface {
	Open(cfg *domain.Config) (Backend, error)
}
