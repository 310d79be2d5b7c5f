package backend

import (
	"encoding/json"
	"time"
)

// Paths below the API root.
const (
	QueryPath  = "/query/"
	MutatePath = "/mutate/"
	StreamPath = "/stream"

	// ParamQuery is the repeated query parameter carrying the key tuple.
	ParamQuery = "p"

	// AckType is the message type of the subscription acknowledgment.
	AckType = "ack"
)

// QueryResponse is the body of a successful snapshot query.
type QueryResponse struct {
	Timestamp time.Time       `json:"timestamp,omitzero"`
	Payload   json.RawMessage `json:"payload"`
}

// MutateResponse is the body of an acknowledged mutation.
type MutateResponse struct {
	Actor  string          `json:"actor"`
	Result json.RawMessage `json:"result,omitempty"`
}

// ErrorResponse is the body of any non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Hello is the first frame a client sends on the stream.
type Hello struct {
	ClientID      string   `json:"clientId"`
	Subscriptions []string `json:"subscriptions"`
}

// Envelope is every frame the server sends on the stream. Type is either
// AckType or a domain name.
type Envelope struct {
	Type          string          `json:"type"`
	Timestamp     time.Time       `json:"timestamp,omitzero"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Subscriptions []string        `json:"subscriptions,omitempty"`
}
