// Package cache implements the read cache shared by every console panel.
// It holds the latest value per DomainKey, collapses concurrent fetches for
// the same key into one backend call and orders writers by timestamp.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/juju/clock"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultFetchTimeout bounds a single backend read.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultStaleAfter is the age after which a fresh entry reports stale.
	DefaultStaleAfter = time.Minute
)

// Cache is the read cache. The zero value is not usable; use New.
type Cache struct {
	querier ports.SnapshotQuerier
	tracer  ports.Tracer
	logger  ports.Logger

	clock        clock.Clock
	fetchTimeout time.Duration
	staleAfter   time.Duration

	group singleflight.Group
	wg    sync.WaitGroup

	mu        sync.Mutex
	records   map[domain.DomainKey]*record
	listeners map[int]func(domain.CacheEntry)
	nextID    int
	closed    bool
}

// record is the cache's private view of one key.
// gen advances on every invalidation; validGen is the generation the stored
// value is known to reflect. The entry may only be Fresh when they are equal.
type record struct {
	entry    domain.CacheEntry
	inFlight bool
	gen      uint64
	validGen uint64
	puts     uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for fetch timestamps and staleness.
func WithClock(clk clock.Clock) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// WithFetchTimeout bounds each backend read.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithStaleAfter sets the age after which Fresh entries report Stale.
// Zero disables age-based staleness.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) {
		c.staleAfter = d
	}
}

// New creates a Cache reading through querier.
func New(querier ports.SnapshotQuerier, tracer ports.Tracer, logger ports.Logger, opts ...Option) *Cache {
	c := &Cache{
		querier:      querier,
		tracer:       tracer,
		logger:       logger,
		clock:        clock.WallClock,
		fetchTimeout: DefaultFetchTimeout,
		staleAfter:   DefaultStaleAfter,
		records:      make(map[domain.DomainKey]*record),
		listeners:    make(map[int]func(domain.CacheEntry)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the entry for key.
func (c *Cache) Get(key domain.DomainKey) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	entry := rec.entry
	entry.Value = bytes.Clone(entry.Value)
	if entry.Status == domain.StatusFresh && entry.Expired(c.clock.Now()) {
		entry.Status = domain.StatusStale
	}
	return entry, true
}

// Keys returns every key currently held, ordered by their string form.
func (c *Cache) Keys() []domain.DomainKey {
	c.mu.Lock()
	keys := make([]domain.DomainKey, 0, len(c.records))
	for key := range c.records {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	slices.SortFunc(keys, func(a, b domain.DomainKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Subscribe registers fn to be called with a copy of every entry that changes
// value or status. The returned function removes the subscription.
func (c *Cache) Subscribe(fn func(domain.CacheEntry)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Fetch returns the latest value for key, reading from the backend.
// Concurrent calls for the same key share one backend call. The shared call is
// not tied to any caller's context; ctx only bounds how long this caller waits.
func (c *Cache) Fetch(ctx context.Context, key domain.DomainKey) (json.RawMessage, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, domain.ErrSessionClosed
	}

	return c.shared(ctx, key)
}

// shared joins or starts the single backend call for key.
func (c *Cache) shared(ctx context.Context, key domain.DomainKey) (json.RawMessage, error) {
	ch := c.group.DoChan(key.ID(), func() (any, error) {
		return c.load(key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		value, _ := res.Val.(json.RawMessage)
		return bytes.Clone(value), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put stores value for key if timestamp is not older than the stored one.
// It is the only path that marks an entry Fresh. It reports whether the write
// was accepted.
func (c *Cache) Put(key domain.DomainKey, value json.RawMessage, timestamp time.Time) bool {
	c.mu.Lock()
	rec := c.recordLocked(key)
	before := rec.entry
	accepted := c.storeLocked(rec, value, timestamp)
	if accepted {
		rec.validGen = rec.gen
		rec.entry.Status = domain.StatusFresh
	}
	notify := c.pendingNotifyLocked(before, rec.entry)
	c.mu.Unlock()

	notify()
	return accepted
}

// Invalidate marks key Stale without dropping its value and starts one
// refresh unless a fetch is already in flight. Keys never stored are ignored.
// It reports whether the key was held.
func (c *Cache) Invalidate(key domain.DomainKey) bool {
	c.mu.Lock()
	rec, ok := c.records[key]
	if !ok || c.closed {
		c.mu.Unlock()
		return false
	}

	before := rec.entry
	rec.gen++
	rec.entry.Status = domain.StatusStale
	startFetch := !rec.inFlight && c.claimRefreshLocked(rec)
	notify := c.pendingNotifyLocked(before, rec.entry)
	c.mu.Unlock()

	notify()

	if startFetch {
		c.refresh(key, "refresh after invalidation")
	}
	return true
}

// InvalidateMatching invalidates every held key that pattern matches and
// returns them in order. Patterns never create keys.
func (c *Cache) InvalidateMatching(pattern domain.KeyPattern) []domain.DomainKey {
	var matched []domain.DomainKey
	for _, key := range c.Keys() {
		if pattern.Matches(key) && c.Invalidate(key) {
			matched = append(matched, key)
		}
	}
	return matched
}

// InFlight reports whether a fetch for key is currently running.
func (c *Cache) InFlight(key domain.DomainKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[key]
	return ok && rec.inFlight
}

// Close stops accepting fetches and waits for background refreshes to finish.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

// claimRefreshLocked marks rec in flight for a background refresh. It reports
// false once the cache is closed.
func (c *Cache) claimRefreshLocked(rec *record) bool {
	if c.closed {
		return false
	}
	rec.inFlight = true
	c.wg.Add(1)
	return true
}

// refresh runs one background fetch for key claimed by claimRefreshLocked.
func (c *Cache) refresh(key domain.DomainKey, reason string) {
	go func() {
		defer c.wg.Done()
		if _, err := c.shared(context.Background(), key); err != nil {
			c.logger.Debug(reason + " failed: " + key.String() + ": " + err.Error())
		}
	}()
}

// settleLocked ends the fetch that started at startGen. The shared call is
// forgotten before the in-flight flag drops, so a fetch requested from here on
// starts a new backend call instead of joining the finished one. It reports
// whether a follow-up fetch was claimed because the entry was invalidated
// while the call was out.
func (c *Cache) settleLocked(key domain.DomainKey, rec *record, startGen uint64) bool {
	c.group.Forget(key.ID())
	rec.inFlight = false
	if rec.gen == startGen || rec.validGen == rec.gen {
		return false
	}
	return c.claimRefreshLocked(rec)
}

func (c *Cache) load(key domain.DomainKey) (any, error) {
	c.mu.Lock()
	rec := c.recordLocked(key)
	before := rec.entry
	rec.inFlight = true
	startGen := rec.gen
	startPuts := rec.puts
	rec.entry.Status = domain.StatusFetching
	notify := c.pendingNotifyLocked(before, rec.entry)
	c.mu.Unlock()
	notify()

	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "cache.fetch", ports.WithAttribute("key", key.String()))
	defer span.End()

	snap, err := c.querier.Query(ctx, key)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
			err = errors.Join(domain.ErrTimeout, err)
		}
		err = zerr.With(zerr.Wrap(err, "fetch failed"), "key", key.String())
		span.RecordError(err)
		c.fail(key, startGen, startPuts, err)
		return nil, err
	}

	timestamp := snap.Timestamp
	if timestamp.IsZero() {
		timestamp = c.clock.Now()
	}

	value, accepted := c.complete(key, snap.Payload, timestamp, startGen)
	span.SetAttribute("vigil.accepted", accepted)
	return value, nil
}

func (c *Cache) complete(key domain.DomainKey, payload json.RawMessage, timestamp time.Time, startGen uint64) (json.RawMessage, bool) {
	c.mu.Lock()
	rec := c.recordLocked(key)
	before := rec.entry

	accepted := c.storeLocked(rec, payload, timestamp)
	if accepted {
		rec.validGen = startGen
	}
	rec.entry.LastError = nil
	rec.entry.Status = c.settledStatusLocked(rec)
	followUp := c.settleLocked(key, rec, startGen)

	value := rec.entry.Value
	notify := c.pendingNotifyLocked(before, rec.entry)
	c.mu.Unlock()

	notify()
	if followUp {
		c.refresh(key, "refresh after late invalidation")
	}
	return value, accepted
}

func (c *Cache) fail(key domain.DomainKey, startGen, startPuts uint64, err error) {
	c.mu.Lock()
	rec := c.recordLocked(key)
	before := rec.entry
	rec.entry.LastError = err

	// A writer that landed while the fetch was out keeps the entry current.
	if rec.puts != startPuts && rec.gen == startGen {
		rec.entry.Status = c.settledStatusLocked(rec)
	} else {
		rec.entry.Status = domain.StatusErrored
	}
	followUp := c.settleLocked(key, rec, startGen)
	notify := c.pendingNotifyLocked(before, rec.entry)
	c.mu.Unlock()

	notify()
	if followUp {
		c.refresh(key, "refresh after late invalidation")
	}
}

// settledStatusLocked is the status of an entry with no fetch in flight.
func (c *Cache) settledStatusLocked(rec *record) domain.EntryStatus {
	if rec.entry.HasValue() && rec.validGen == rec.gen {
		return domain.StatusFresh
	}
	return domain.StatusStale
}

// storeLocked writes value if timestamp is not older than the current one.
func (c *Cache) storeLocked(rec *record, value json.RawMessage, timestamp time.Time) bool {
	if !rec.entry.FetchedAt.IsZero() && timestamp.Before(rec.entry.FetchedAt) {
		return false
	}

	rec.entry.Digest = xxhash.Sum64(value)
	rec.entry.Value = bytes.Clone(value)
	rec.entry.FetchedAt = timestamp
	rec.entry.LastError = nil
	rec.puts++
	return true
}

func (c *Cache) recordLocked(key domain.DomainKey) *record {
	rec, ok := c.records[key]
	if !ok {
		rec = &record{
			entry: domain.CacheEntry{
				Key:        key,
				StaleAfter: c.staleAfter,
				Status:     domain.StatusStale,
			},
		}
		c.records[key] = rec
	}
	return rec
}

// pendingNotifyLocked captures listeners if the entry changed in a way
// observers care about. The returned function must run without the lock held.
func (c *Cache) pendingNotifyLocked(before, after domain.CacheEntry) func() {
	valueChanged := before.Digest != after.Digest || before.HasValue() != after.HasValue()
	if !valueChanged && before.Status == after.Status && errors.Is(before.LastError, after.LastError) {
		return func() {}
	}
	if len(c.listeners) == 0 {
		return func() {}
	}

	listeners := make([]func(domain.CacheEntry), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	snapshot := after
	snapshot.Value = bytes.Clone(after.Value)

	return func() {
		for _, fn := range listeners {
			fn(snapshot)
		}
	}
}
