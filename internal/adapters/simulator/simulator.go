// Package simulator serves a synthetic console backend: snapshot queries,
// mutations and the push stream, with data that evolves over time.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.trai.ch/vigil/internal/adapters/backend"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// APIRoot is the path prefix of every endpoint.
	APIRoot = "/api/v1"

	// DropPath closes every open stream when posted to.
	DropPath = "/admin/drop-stream"

	// DefaultTick is the interval at which streamed domains change.
	DefaultTick = time.Second
)

// Options tunes the simulator.
type Options struct {
	// Identity is reported as the actor of every mutation.
	Identity string
	// Tick is the interval between stream updates.
	Tick time.Duration
	// DropEvery closes all streams periodically. Zero disables it.
	DropEvery time.Duration
	// Seed makes the generated data reproducible.
	Seed uint64
	// Clock drives ticks and timestamps.
	Clock clock.Clock
}

// Simulator implements the backend wire protocol in memory.
type Simulator struct {
	logger ports.Logger
	clock  clock.Clock
	opts   Options

	mu    sync.Mutex
	world *world

	hub  *hub
	echo *echo.Echo
}

// New creates a Simulator.
func New(logger ports.Logger, opts Options) *Simulator {
	if opts.Identity == "" {
		opts.Identity = domain.DefaultIdentity
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}

	s := &Simulator{
		logger: logger,
		clock:  opts.Clock,
		opts:   opts,
		world:  newWorld(opts.Seed),
		hub:    newHub(logger),
	}
	s.echo = s.routes()
	return s
}

func (s *Simulator) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	api := e.Group(APIRoot)
	api.GET(backend.QueryPath+":domain", s.handleQuery)
	api.POST(backend.MutatePath+":kind", s.handleMutate)
	api.GET(backend.StreamPath, s.handleStream)
	api.POST(DropPath, s.handleDrop)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if !c.Response().Committed {
			_ = c.JSON(code, backend.ErrorResponse{Error: msg})
		}
	}
	return e
}

// Handler exposes the HTTP endpoints.
func (s *Simulator) Handler() http.Handler {
	return s.echo
}

// Listen serves on addr and evolves the world until ctx is done.
func (s *Simulator) Listen(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis and evolves the world until ctx is done.
func (s *Simulator) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{Handler: s.echo, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()
	go s.Run(ctx)

	s.logger.Info(fmt.Sprintf("simulated backend listening on http://%s%s", lis.Addr(), APIRoot))

	select {
	case <-ctx.Done():
		s.hub.dropAll()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "simulated backend stopped")
	}
}

// Run advances the world every tick and pushes the streamed domains until
// ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	var drop <-chan time.Time
	if s.opts.DropEvery > 0 {
		drop = s.clock.After(s.opts.DropEvery)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.opts.Tick):
			s.Step()
		case <-drop:
			s.DropStreams()
			drop = s.clock.After(s.opts.DropEvery)
		}
	}
}

// Step advances the world once and broadcasts the streamed domains.
func (s *Simulator) Step() {
	s.mu.Lock()
	updates := s.world.tick()
	s.mu.Unlock()

	now := s.clock.Now()
	for name, payload := range updates {
		s.hub.broadcast(name, now, payload)
	}
}

// DropStreams closes every open stream and returns how many were closed.
func (s *Simulator) DropStreams() int {
	n := s.hub.dropAll()
	if n > 0 {
		s.logger.Info(fmt.Sprintf("dropped %d stream connection(s)", n))
	}
	return n
}

func (s *Simulator) handleQuery(c echo.Context) error {
	name := c.Param("domain")
	params := c.QueryParams()[backend.ParamQuery]

	s.mu.Lock()
	payload, err := s.world.snapshot(name, params)
	s.mu.Unlock()

	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, errUnknownDomain) {
			code = http.StatusNotFound
		}
		return echo.NewHTTPError(code, err.Error())
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, backend.QueryResponse{Timestamp: s.clock.Now(), Payload: raw})
}

func (s *Simulator) handleMutate(c echo.Context) error {
	kind, err := domain.ParseMutationKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	var payload map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload must be a JSON object")
	}

	s.mu.Lock()
	result, err := s.world.apply(kind, s.opts.Identity, payload, s.clock.Now())
	s.mu.Unlock()

	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("applied %s for %s", kind, s.opts.Identity))
	return c.JSON(http.StatusOK, backend.MutateResponse{Actor: s.opts.Identity, Result: raw})
}

func (s *Simulator) handleDrop(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"dropped": s.DropStreams()})
}

func (s *Simulator) handleStream(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the response.
		return nil
	}

	cl, err := s.hub.accept(ws)
	if err != nil {
		s.logger.Debug("stream handshake failed: " + err.Error())
		_ = ws.Close()
		return nil
	}

	// Send the current state of every subscribed domain so the client starts fresh.
	now := s.clock.Now()
	s.mu.Lock()
	initial := make(map[string]any, len(cl.subs))
	for name := range cl.subs {
		if payload, err := s.world.snapshot(name, nil); err == nil {
			initial[name] = payload
		}
	}
	s.mu.Unlock()
	for name, payload := range initial {
		cl.push(name, now, payload)
	}

	cl.serve()
	return nil
}
