package domain

import (
	"encoding/json"
	"time"
)

// EntryStatus describes how current a cached value is.
type EntryStatus uint8

const (
	// StatusStale indicates the value may be outdated and should be refreshed.
	StatusStale EntryStatus = iota
	// StatusFresh indicates the value was written by the most recent accepted update.
	StatusFresh
	// StatusFetching indicates a refresh is in flight.
	StatusFetching
	// StatusErrored indicates the last refresh failed; the previous value is kept.
	StatusErrored
)

// String returns the display name of the status.
func (s EntryStatus) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusFetching:
		return "fetching"
	case StatusErrored:
		return "errored"
	default:
		return "stale"
	}
}

// CacheEntry is the latest known state of one DomainKey.
// Callers always receive copies; the cache owns the original.
type CacheEntry struct {
	Key        DomainKey
	Value      json.RawMessage
	Digest     uint64
	FetchedAt  time.Time
	StaleAfter time.Duration
	Status     EntryStatus
	LastError  error
}

// HasValue reports whether a value has ever been stored for the key.
func (e *CacheEntry) HasValue() bool {
	return e.Value != nil
}

// Expired reports whether the value is older than its StaleAfter budget at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	if e.StaleAfter <= 0 || e.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(e.FetchedAt) > e.StaleAfter
}

// Decode unmarshals the cached value into v.
func (e *CacheEntry) Decode(v any) error {
	return json.Unmarshal(e.Value, v)
}
