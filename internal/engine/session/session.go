// Package session assembles the sync engine for one loaded configuration:
// the read cache, the stream manager, the poller, the invalidation
// coordinator and the mutation pipeline.
package session

import (
	"context"
	"sync"

	"github.com/juju/clock"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/engine/cache"
	"go.trai.ch/vigil/internal/engine/invalidation"
	"go.trai.ch/vigil/internal/engine/mutation"
	"go.trai.ch/vigil/internal/engine/poller"
	"go.trai.ch/vigil/internal/engine/stream"
	"golang.org/x/sync/errgroup"
)

// Session is one running sync engine.
type Session struct {
	cfg    *domain.Config
	logger ports.Logger

	cache       *cache.Cache
	stream      *stream.Manager
	poller      *poller.Poller
	coordinator *invalidation.Coordinator
	mutations   *mutation.Pipeline

	wg sync.WaitGroup
}

// Option configures a Session.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock shared by every engine component.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// New wires the engine components for cfg on top of backend.
func New(
	cfg *domain.Config,
	backend ports.Backend,
	notifier ports.Notifier,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Session {
	o := options{clock: clock.WallClock}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{cfg: cfg, logger: logger}

	s.cache = cache.New(backend.Querier, tracer, logger,
		cache.WithClock(o.clock),
		cache.WithFetchTimeout(cfg.FetchTimeout),
		cache.WithStaleAfter(cfg.StaleAfter),
	)
	s.stream = stream.NewManager(backend.Dialer, s.cache, notifier, tracer, logger,
		stream.Config{
			ClientID:         cfg.ClientID,
			Domains:          cfg.StreamDomains,
			Policy:           cfg.Backoff,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		stream.WithClock(o.clock),
		stream.WithResync(s.resync),
	)
	s.poller = poller.New(s.cache, tracer, logger, poller.WithClock(o.clock))
	s.coordinator = invalidation.New(s.cache, nil, tracer, logger)
	s.mutations = mutation.New(backend.Sender, s.coordinator, notifier, tracer, logger,
		mutation.WithClock(o.clock),
		mutation.WithTimeout(cfg.MutationTimeout),
		mutation.WithIdentity(cfg.Identity),
	)

	s.ApplyPolls(cfg.Polls)
	return s
}

// Config returns the configuration the session was built from.
func (s *Session) Config() *domain.Config {
	return s.cfg
}

// Cache returns the read cache.
func (s *Session) Cache() *cache.Cache {
	return s.cache
}

// Stream returns the stream manager.
func (s *Session) Stream() *stream.Manager {
	return s.stream
}

// Poller returns the poll scheduler.
func (s *Session) Poller() *poller.Poller {
	return s.poller
}

// Mutations returns the mutation pipeline.
func (s *Session) Mutations() *mutation.Pipeline {
	return s.mutations
}

// Run connects the stream and drives polling until ctx is cancelled. It
// returns once every goroutine the session started has finished.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.stream.Run(gctx)
	})
	g.Go(func() error {
		return s.poller.Run(gctx, s.cfg.TickInterval)
	})

	if len(s.cfg.StreamDomains) > 0 {
		s.stream.Connect()
	}

	err := g.Wait()
	s.wg.Wait()
	s.cache.Close()
	return err
}

// ApplyPolls reconciles the poll table with polls: new keys are registered,
// known keys get the new interval and keys no longer listed are dropped.
func (s *Session) ApplyPolls(polls []domain.PollSpec) {
	want := make(map[domain.DomainKey]bool, len(polls))
	for _, spec := range polls {
		key := spec.Key()
		want[key] = true
		if !s.poller.SetInterval(key, spec.Interval) {
			s.poller.Register(key, spec.Interval)
		}
	}
	for _, task := range s.poller.Tasks() {
		if !want[task.Key] {
			s.poller.Unregister(task.Key)
		}
	}
}

// resync runs on every (re)connect. Held keys of streamed domains may have
// missed events while disconnected, so they are revalidated. Unparameterized
// domains nobody has read yet get one initial fetch.
func (s *Session) resync(domains []string) {
	held := make(map[string]bool)
	for _, key := range s.cache.Keys() {
		held[key.Domain] = true
	}

	for _, name := range domains {
		if held[name] {
			s.cache.InvalidateMatching(domain.Pattern(name, domain.Wildcard))
			continue
		}
		spec, ok := domain.LookupDomain(name)
		if !ok || len(spec.ParamNames) > 0 {
			continue
		}
		s.prefetch(domain.NewKey(name))
	}
}

func (s *Session) prefetch(key domain.DomainKey) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.cache.Fetch(context.Background(), key); err != nil {
			s.logger.Debug("initial fetch of " + key.String() + " failed: " + err.Error())
		}
	}()
}
