// Package stream keeps one live server-push subscription open, reconnecting
// with exponential backoff, and dispatches events into the read cache.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Sink receives dispatched stream events. The read cache implements it.
type Sink interface {
	Put(key domain.DomainKey, value json.RawMessage, timestamp time.Time) bool
}

// Config holds the subscription parameters.
type Config struct {
	ClientID         string
	Domains          []string
	Policy           domain.BackoffPolicy
	HandshakeTimeout time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for retry timers.
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) {
		m.clock = clk
	}
}

// WithResync sets the function called with the subscribed domains every time
// the connection is (re)established. It runs on the manager's goroutine and
// must not block.
func WithResync(fn func(domains []string)) Option {
	return func(m *Manager) {
		m.resync = fn
	}
}

type input struct {
	event Event
	gen   uint64
	conn  ports.StreamConn
	err   error
}

// Manager owns the subscription lifecycle. All state changes happen on the
// goroutine running Run.
type Manager struct {
	dialer   ports.StreamDialer
	sink     Sink
	notifier ports.Notifier
	tracer   ports.Tracer
	logger   ports.Logger
	clock    clock.Clock
	resync   func(domains []string)
	cfg      Config

	inputs chan input
	done   chan struct{}
	stop   context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup

	// Owned by the Run goroutine.
	gen     uint64
	conn    ports.StreamConn
	timer   clock.Timer
	lastErr error

	live atomic.Uint64

	mu       sync.Mutex
	state    domain.ConnState
	watchers map[int]func(domain.ConnState)
	nextID   int
}

// NewManager creates a Manager in the Idle phase.
func NewManager(
	dialer ports.StreamDialer,
	sink Sink,
	notifier ports.Notifier,
	tracer ports.Tracer,
	logger ports.Logger,
	cfg Config,
	opts ...Option,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		dialer:   dialer,
		sink:     sink,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger,
		clock:    clock.WallClock,
		cfg:      cfg,
		inputs:   make(chan input),
		done:     make(chan struct{}),
		stop:     cancel,
		ctx:      ctx,
		watchers: make(map[int]func(domain.ConnState)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() domain.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Domains returns the subscribed domain names.
func (m *Manager) Domains() []string {
	return slices.Clone(m.cfg.Domains)
}

// Watch registers fn for every state change. fn runs on the manager's
// goroutine and must not block. The returned function removes it.
func (m *Manager) Watch(fn func(domain.ConnState)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.watchers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

// Connect asks the manager to connect. It is a no-op unless the manager is
// Idle or Failed.
func (m *Manager) Connect() {
	m.post(input{event: EventConnect})
}

// Close releases the connection and stops dispatch. Run returns afterwards.
func (m *Manager) Close() {
	m.stop()
}

// Done is closed once Run has returned.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Run processes events until ctx is cancelled or Close is called.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	defer m.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			m.apply(input{event: EventClose})
			m.stop()
			return nil
		case <-m.ctx.Done():
			m.apply(input{event: EventClose})
			return nil
		case in := <-m.inputs:
			m.apply(in)
		}
	}
}

func (m *Manager) post(in input) {
	select {
	case m.inputs <- in:
	case <-m.ctx.Done():
		if in.conn != nil {
			_ = in.conn.Close()
		}
	}
}

func (m *Manager) apply(in input) {
	if in.event != EventConnect && in.event != EventClose && in.gen != m.gen {
		if in.conn != nil {
			_ = in.conn.Close()
		}
		return
	}

	prev := m.State()
	next, effects := Transition(prev, in.event, m.cfg.Policy)

	switch in.event {
	case EventHandshakeOK:
		if next.Phase == domain.PhaseConnected {
			m.conn = in.conn
			m.live.Store(m.gen)
			m.startReader(in.conn, m.gen)
		} else if in.conn != nil {
			_ = in.conn.Close()
		}
	case EventTransportError:
		m.lastErr = in.err
		if prev.Phase == domain.PhaseConnected {
			m.logger.Warn("stream disconnected: " + errString(in.err))
		} else {
			m.logger.Debug("stream dial failed: " + errString(in.err))
		}
		m.releaseConn()
	}

	m.setState(next)

	for _, eff := range effects {
		m.perform(eff, next)
	}
}

func (m *Manager) perform(eff Effect, state domain.ConnState) {
	switch eff.Kind {
	case EffectDial:
		m.gen++
		m.dial(m.gen, state.Attempt)
	case EffectScheduleRetry:
		gen := m.gen
		m.logger.Debug("stream reconnecting in " + eff.Delay.String() + " (attempt " + strconv.Itoa(state.Attempt) + ")")
		m.timer = m.clock.AfterFunc(eff.Delay, func() {
			m.post(input{event: EventDelayElapsed, gen: gen})
		})
	case EffectResync:
		m.logger.Info("stream connected")
		if m.resync != nil {
			m.resync(m.Domains())
		}
	case EffectNotifyFailed:
		err := zerr.With(errors.Join(domain.ErrStreamFailed, m.lastErr), "retries", state.Attempt)
		m.notifier.Notify(domain.Notification{
			Severity: domain.SeverityError,
			Source:   "stream",
			Message:  "live updates unavailable after " + strconv.Itoa(state.Attempt) + " retries",
			Err:      err,
			At:       m.clock.Now(),
		})
	case EffectRelease:
		m.gen++
		m.releaseConn()
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
	}
}

func (m *Manager) dial(gen uint64, attempt int) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(m.ctx, m.cfg.HandshakeTimeout)
		defer cancel()

		ctx, span := m.tracer.Start(ctx, "stream.connect", ports.WithAttribute("attempt", attempt))
		defer span.End()

		conn, err := m.dialer.Dial(ctx, m.cfg.ClientID, m.cfg.Domains)
		if err != nil {
			span.RecordError(err)
			m.post(input{event: EventTransportError, gen: gen, err: err})
			return
		}
		m.post(input{event: EventHandshakeOK, gen: gen, conn: conn})
	}()
}

func (m *Manager) startReader(conn ports.StreamConn, gen uint64) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			ev, err := conn.Recv()
			if err != nil {
				m.post(input{event: EventTransportError, gen: gen, err: err})
				return
			}
			if m.live.Load() != gen {
				return
			}
			if !slices.Contains(m.cfg.Domains, ev.Domain) {
				m.logger.Debug("stream: discarding event for unsubscribed domain " + strconv.Quote(ev.Domain))
				continue
			}
			timestamp := ev.Timestamp
			if timestamp.IsZero() {
				timestamp = m.clock.Now()
			}
			m.sink.Put(domain.NewKey(ev.Domain), ev.Payload, timestamp)
		}
	}()
}

func (m *Manager) releaseConn() {
	m.live.Store(0)
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) setState(next domain.ConnState) {
	m.mu.Lock()
	if next == m.state {
		m.mu.Unlock()
		return
	}
	m.state = next
	watchers := make([]func(domain.ConnState), 0, len(m.watchers))
	for _, fn := range m.watchers {
		watchers = append(watchers, fn)
	}
	m.mu.Unlock()

	for _, fn := range watchers {
		fn(next)
	}
}

func errString(err error) string {
	if err == nil {
		return "closed"
	}
	return err.Error()
}
