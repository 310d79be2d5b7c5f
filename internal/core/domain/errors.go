package domain

import "go.trai.ch/zerr"

var (
	// ErrTransport is returned when the backend cannot be reached or the connection drops.
	ErrTransport = zerr.New("transport failure")

	// ErrProtocol is returned when the backend sends a message of unexpected shape or for an unknown domain.
	ErrProtocol = zerr.New("protocol violation")

	// ErrBackend is returned when the backend acknowledges a request but rejects it.
	ErrBackend = zerr.New("backend rejected request")

	// ErrTimeout is returned when a fetch, mutation or handshake does not resolve within its bound.
	ErrTimeout = zerr.New("request timed out")

	// ErrUnknownDomain is returned when a key names a domain that is not in the catalog.
	ErrUnknownDomain = zerr.New("unknown domain")

	// ErrInvalidParams is returned when a key carries the wrong number of parameters for its domain.
	ErrInvalidParams = zerr.New("invalid domain parameters")

	// ErrUnknownMutation is returned when a mutation kind has no entry in the rule table.
	ErrUnknownMutation = zerr.New("unknown mutation kind")

	// ErrInvalidPayload is returned when a mutation payload is missing required fields.
	ErrInvalidPayload = zerr.New("invalid mutation payload")

	// ErrMutationPending is returned when a mutation of the same kind is still awaiting its outcome.
	ErrMutationPending = zerr.New("mutation already pending")

	// ErrSessionClosed is returned when an operation is attempted on a torn down session.
	ErrSessionClosed = zerr.New("session closed")

	// ErrStreamFailed is reported once when the stream exhausts its reconnect attempts.
	ErrStreamFailed = zerr.New("stream connection failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrStatusUnavailable is returned when the status socket cannot be queried.
	ErrStatusUnavailable = zerr.New("status endpoint unavailable")
)
