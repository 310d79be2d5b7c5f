package domain

import (
	"encoding/json"
	"time"
)

// StreamEvent is one typed message delivered by the push stream.
type StreamEvent struct {
	Domain    string
	Timestamp time.Time
	Payload   json.RawMessage
}

// Snapshot is the result of a point-in-time query.
// Timestamp is zero when the backend did not supply one.
type Snapshot struct {
	Payload   json.RawMessage
	Timestamp time.Time
}

// Ack is the backend's acknowledgment of a mutation.
// Actor identifies who performed the write and resolves $self patterns.
type Ack struct {
	Actor  string
	Result json.RawMessage
}
