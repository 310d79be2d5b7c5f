// Package mutation executes operator writes against the backend and hands
// successful ones to the invalidation coordinator.
package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/oklog/ulid/v2"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultTimeout bounds a single mutation round-trip.
const DefaultTimeout = 15 * time.Second

// Invalidator is notified of every successful mutation.
type Invalidator interface {
	OnMutationSucceeded(ctx context.Context, kind domain.MutationKind, mctx domain.MutationContext) []domain.DomainKey
}

// Pipeline runs mutations one at a time per kind.
type Pipeline struct {
	sender      ports.MutationSender
	invalidator Invalidator
	notifier    ports.Notifier
	tracer      ports.Tracer
	logger      ports.Logger

	clock    clock.Clock
	timeout  time.Duration
	identity string

	mu      sync.Mutex
	pending map[domain.MutationKind]bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for record timestamps.
func WithClock(clk clock.Clock) Option {
	return func(p *Pipeline) {
		p.clock = clk
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithIdentity sets the actor used when the backend omits one.
func WithIdentity(identity string) Option {
	return func(p *Pipeline) {
		p.identity = identity
	}
}

// New creates a Pipeline.
func New(
	sender ports.MutationSender,
	invalidator Invalidator,
	notifier ports.Notifier,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		sender:      sender,
		invalidator: invalidator,
		notifier:    notifier,
		tracer:      tracer,
		logger:      logger,
		clock:       clock.WallClock,
		timeout:     DefaultTimeout,
		identity:    domain.DefaultIdentity,
		pending:     make(map[domain.MutationKind]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pending reports whether a mutation of kind is waiting for the backend.
func (p *Pipeline) Pending(kind domain.MutationKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending[kind]
}

// Execute submits payload for kind and returns the finished record.
// Requests that are rejected before reaching the backend return a nil record.
func (p *Pipeline) Execute(ctx context.Context, kind domain.MutationKind, payload json.RawMessage) (*domain.MutationRecord, error) {
	if !kind.Valid() {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownMutation, "rejected"), "kind", string(kind))
	}
	if err := validatePayload(kind, payload); err != nil {
		return nil, err
	}

	if !p.acquire(kind) {
		return nil, zerr.With(zerr.Wrap(domain.ErrMutationPending, "rejected"), "kind", string(kind))
	}
	defer p.release(kind)

	rec := &domain.MutationRecord{
		ID:        ulid.Make().String(),
		Kind:      kind,
		Status:    domain.MutationPending,
		Payload:   payload,
		StartedAt: p.clock.Now(),
	}

	ctx, span := p.tracer.Start(ctx, "mutation.execute",
		ports.WithAttribute("kind", string(kind)),
		ports.WithAttribute("id", rec.ID),
	)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	ack, err := p.sender.Mutate(callCtx, kind, payload)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		err = errors.Join(domain.ErrTimeout, err)
	}
	cancel()

	rec.FinishedAt = p.clock.Now()
	if err != nil {
		err = zerr.With(zerr.Wrap(err, "mutation failed"), "kind", string(kind))
		span.RecordError(err)
		rec.Status = domain.MutationFailed
		rec.Err = err
		p.notifier.Notify(domain.Notification{
			Severity: domain.SeverityError,
			Source:   string(kind),
			Message:  string(kind) + " failed",
			Err:      err,
			At:       rec.FinishedAt,
		})
		return rec, err
	}

	rec.Status = domain.MutationSucceeded
	rec.Result = ack.Result
	rec.Actor = ack.Actor
	if rec.Actor == "" {
		rec.Actor = p.identity
	}

	rec.AffectedKeys = p.invalidator.OnMutationSucceeded(
		context.WithoutCancel(ctx),
		kind,
		domain.MutationContext{Actor: rec.Actor},
	)
	span.SetAttribute("affected", len(rec.AffectedKeys))

	p.notifier.Notify(domain.Notification{
		Severity: domain.SeverityInfo,
		Source:   string(kind),
		Message:  string(kind) + " succeeded",
		At:       rec.FinishedAt,
	})
	p.logger.Debug("mutation " + rec.ID + " " + string(kind) + " acknowledged for " + rec.Actor)
	return rec, nil
}

func (p *Pipeline) acquire(kind domain.MutationKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending[kind] {
		return false
	}
	p.pending[kind] = true
	return true
}

func (p *Pipeline) release(kind domain.MutationKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, kind)
}

func validatePayload(kind domain.MutationKind, payload json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPayload, "payload must be a JSON object"), "kind", string(kind))
	}
	for _, name := range kind.RequiredFields() {
		value, ok := fields[name]
		if !ok || string(value) == "null" {
			return zerr.With(zerr.Wrap(domain.ErrInvalidPayload, "missing field "+name), "kind", string(kind))
		}
	}
	return nil
}
