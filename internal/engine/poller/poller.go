// Package poller refreshes cache keys that the stream does not cover on
// independent per-key intervals.
package poller

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
)

// DefaultTickInterval is how often Run evaluates the task table.
const DefaultTickInterval = 250 * time.Millisecond

// Fetcher reads a key through the cache.
type Fetcher interface {
	Fetch(ctx context.Context, key domain.DomainKey) (json.RawMessage, error)
}

// Poller owns the poll task table.
type Poller struct {
	fetcher Fetcher
	tracer  ports.Tracer
	logger  ports.Logger
	clock   clock.Clock

	mu    sync.Mutex
	tasks map[domain.DomainKey]*domain.PollTask
	wg    sync.WaitGroup
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock sets the clock used for completion times and the Run ticker.
func WithClock(clk clock.Clock) Option {
	return func(p *Poller) {
		p.clock = clk
	}
}

// New creates an empty Poller.
func New(fetcher Fetcher, tracer ports.Tracer, logger ports.Logger, opts ...Option) *Poller {
	p := &Poller{
		fetcher: fetcher,
		tracer:  tracer,
		logger:  logger,
		clock:   clock.WallClock,
		tasks:   make(map[domain.DomainKey]*domain.PollTask),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds a task for key, or updates its interval if one exists.
func (p *Poller) Register(key domain.DomainKey, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if task, ok := p.tasks[key]; ok {
		task.Interval = interval
		return
	}
	p.tasks[key] = &domain.PollTask{Key: key, Interval: interval}
}

// Unregister removes the task for key. A fetch already in flight completes
// and is discarded.
func (p *Poller) Unregister(key domain.DomainKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tasks, key)
}

// SetInterval changes the cadence of an existing task and reports whether
// the task exists.
func (p *Poller) SetInterval(key domain.DomainKey, interval time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.tasks[key]
	if ok {
		task.Interval = interval
	}
	return ok
}

// Tasks returns a snapshot of every task ordered by key.
func (p *Poller) Tasks() []domain.PollTask {
	p.mu.Lock()
	tasks := make([]domain.PollTask, 0, len(p.tasks))
	for _, task := range p.tasks {
		tasks = append(tasks, *task)
	}
	p.mu.Unlock()

	slices.SortFunc(tasks, func(a, b domain.PollTask) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	return tasks
}

// Tick starts a fetch for every due task and returns the keys it started.
func (p *Poller) Tick(ctx context.Context, now time.Time) []domain.DomainKey {
	p.mu.Lock()
	var due []domain.DomainKey
	for key, task := range p.tasks {
		if task.Due(now) {
			task.InFlight = true
			due = append(due, key)
		}
	}
	p.mu.Unlock()

	if len(due) == 0 {
		return nil
	}

	slices.SortFunc(due, func(a, b domain.DomainKey) int {
		return strings.Compare(a.String(), b.String())
	})

	_, span := p.tracer.Start(ctx, "poller.tick", ports.WithAttribute("due", len(due)))
	defer span.End()

	for _, key := range due {
		p.wg.Add(1)
		go p.poll(ctx, key)
	}
	return due
}

// Run ticks every interval until ctx is cancelled, then waits for in-flight
// fetches.
func (p *Poller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	defer p.wg.Wait()

	p.Tick(ctx, p.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.clock.After(interval):
			p.Tick(ctx, p.clock.Now())
		}
	}
}

// Wait blocks until every started fetch has completed.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) poll(ctx context.Context, key domain.DomainKey) {
	defer p.wg.Done()

	_, err := p.fetcher.Fetch(ctx, key)
	if err != nil {
		p.logger.Debug("poll " + key.String() + " failed: " + err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	task, ok := p.tasks[key]
	if !ok {
		return
	}
	task.InFlight = false
	task.LastRunAt = p.clock.Now()
}
