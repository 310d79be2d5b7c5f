// Package app implements the application layer for vigil.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/vigil/internal/adapters/detector"
	"go.trai.ch/vigil/internal/adapters/linear"
	"go.trai.ch/vigil/internal/adapters/notifier"
	"go.trai.ch/vigil/internal/adapters/simulator"
	"go.trai.ch/vigil/internal/adapters/telemetry"
	"go.trai.ch/vigil/internal/adapters/tui"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/engine/session"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	sessions     *session.Factory
	tracer       *telemetry.OTelTracer
	notes        *notifier.Hub
	status       ports.StatusConnector
	watcher      ports.FileWatcher
	logger       ports.Logger

	cwd         string
	sessionOpts []session.Option
	teaOptions  []tea.ProgramOption
	disableTick bool
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sessions *session.Factory,
	tracer *telemetry.OTelTracer,
	notes *notifier.Hub,
	status ports.StatusConnector,
	watcher ports.FileWatcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		sessions:     sessions,
		tracer:       tracer,
		notes:        notes,
		status:       status,
		watcher:      watcher,
		logger:       log,
		cwd:          ".",
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithDisableTick disables the TUI redraw tick.
func (a *App) WithDisableTick() *App {
	a.disableTick = true
	return a
}

// WithSessionOptions adds options applied to every session the App builds.
func (a *App) WithSessionOptions(opts ...session.Option) *App {
	a.sessionOpts = append(a.sessionOpts, opts...)
	return a
}

// WithWorkDir sets the directory the configuration search starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.cwd = dir
	return a
}

// SetLogging switches the logger to debug level and/or JSON output when the
// logger supports it.
func (a *App) SetLogging(verbose, jsonMode bool) {
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(verbose)
	}
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(jsonMode)
	}
}

// Close flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if a.tracer == nil {
		return nil
	}
	return a.tracer.Shutdown(ctx)
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	// OutputMode is one of auto, tui or linear.
	OutputMode string
	// Activity prints traced operations in linear mode.
	Activity bool
	// NoStatus disables the status socket.
	NoStatus bool
	// Out receives linear output. Nil selects stdout.
	Out io.Writer
}

// Watch runs a session and renders it until ctx is done or the user quits.
//
//nolint:cyclop,funlen // orchestration function
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	cfg, err := a.configLoader.Load(a.cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	sess, err := a.sessions.New(cfg, a.sessionOpts...)
	if err != nil {
		return err
	}

	renderer := a.newRenderer(sess, opts)

	detachTracer := a.tracer.Attach(renderer)
	defer detachTracer()
	detachNotes := a.notes.Attach(renderer)
	defer detachNotes()
	unsubscribe := sess.Cache().Subscribe(renderer.OnEntry)
	defer unsubscribe()

	var publisher ports.StatusPublisher
	if !opts.NoStatus && cfg.StatusSocket != "" {
		publisher = a.status.Publisher(cfg.StatusSocket, sess.Mutations())
	}

	unwatch := sess.Stream().Watch(func(state domain.ConnState) {
		renderer.OnConnState(state)
		if publisher != nil {
			publisher.SetConnState(state)
		}
	})
	defer unwatch()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	// Renderer routine. A renderer that ends on its own (the user quit the
	// dashboard) ends the session.
	g.Go(func() error {
		defer stop()
		if err := renderer.Start(runCtx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	// Session routine
	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()
		if err := sess.Run(runCtx); err != nil {
			return zerr.Wrap(err, "session failed")
		}
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			if err := publisher.Serve(runCtx); err != nil {
				a.logger.Warn("status endpoint disabled: " + err.Error())
			}
			return nil
		})
	}

	if cfg.Path != "" {
		g.Go(func() error {
			return a.watcher.Watch(runCtx, cfg.Path, func() {
				a.reload(sess)
			})
		})
	}

	return g.Wait()
}

func (a *App) newRenderer(sess *session.Session, opts WatchOptions) ports.Renderer {
	mode := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	if mode == detector.ModeTUI {
		model := tui.NewModel(os.Stderr).WithRefresh(func(key domain.DomainKey) {
			sess.Cache().Invalidate(key)
		})
		if a.disableTick {
			model = model.WithDisableTick()
		}
		return tui.NewRenderer(&model, a.teaOptions...)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return linear.NewRenderer(out).WithActivity(opts.Activity)
}

// reload re-reads the configuration and applies its poll table. Other
// settings take effect on the next start.
func (a *App) reload(sess *session.Session) {
	cfg, err := a.configLoader.Load(a.cwd)
	if err != nil {
		a.logger.Error(zerr.Wrap(err, "config reload failed"))
		return
	}
	sess.ApplyPolls(cfg.Polls)
	a.logger.Info(fmt.Sprintf("reloaded %d polls from %s", len(cfg.Polls), cfg.Path))
}

// Get fetches key once and writes its payload as indented JSON to w.
func (a *App) Get(ctx context.Context, key domain.DomainKey, w io.Writer) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Cache().Close()

	payload, err := sess.Cache().Fetch(ctx, key)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "fetch failed"), "key", key.String())
	}
	return writeJSON(w, payload)
}

// mutationView is the printed form of a finished mutation.
type mutationView struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Status   string          `json:"status"`
	Actor    string          `json:"actor,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Affected []string        `json:"affected,omitempty"`
	Took     string          `json:"took"`
}

// Mutate submits one mutation and writes the acknowledged record to w.
// When a watch session is listening on the status socket the mutation runs
// there, so the session's cache is invalidated; otherwise a one-shot session
// submits it.
func (a *App) Mutate(ctx context.Context, kindName string, payload json.RawMessage, w io.Writer) error {
	kind, err := domain.ParseMutationKind(kindName)
	if err != nil {
		return err
	}

	cfg, err := a.configLoader.Load(a.cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	rec, err := a.mutateInSession(ctx, cfg.StatusSocket, kind, payload)
	if errors.Is(err, domain.ErrStatusUnavailable) {
		a.logger.Debug("no watch session on " + cfg.StatusSocket + ", submitting directly")
		rec, err = a.mutateOneShot(ctx, cfg, kind, payload)
	}
	if err != nil {
		return err
	}
	return writeMutation(w, rec)
}

func (a *App) mutateInSession(
	ctx context.Context,
	socketPath string,
	kind domain.MutationKind,
	payload json.RawMessage,
) (*domain.MutationRecord, error) {
	if socketPath == "" {
		return nil, domain.ErrStatusUnavailable
	}
	if _, err := os.Stat(socketPath); err != nil {
		return nil, errors.Join(domain.ErrStatusUnavailable, err)
	}

	client, err := a.status.Dial(socketPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = client.Close()
	}()
	return client.Mutate(ctx, kind, payload)
}

func (a *App) mutateOneShot(
	ctx context.Context,
	cfg *domain.Config,
	kind domain.MutationKind,
	payload json.RawMessage,
) (*domain.MutationRecord, error) {
	sess, err := a.sessions.New(cfg, a.sessionOpts...)
	if err != nil {
		return nil, err
	}
	defer sess.Cache().Close()
	return sess.Mutations().Execute(ctx, kind, payload)
}

func writeMutation(w io.Writer, rec *domain.MutationRecord) error {
	view := mutationView{
		ID:     rec.ID,
		Kind:   string(rec.Kind),
		Status: rec.Status.String(),
		Actor:  rec.Actor,
		Result: rec.Result,
		Took:   rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond).String(),
	}
	for _, key := range rec.AffectedKeys {
		view.Affected = append(view.Affected, key.String())
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return zerr.Wrap(err, "failed to encode mutation")
	}
	return writeJSON(w, raw)
}

// Status queries a running watch session through its status socket.
// An empty socketPath selects the configured one.
func (a *App) Status(ctx context.Context, socketPath string, w io.Writer) error {
	if socketPath == "" {
		cfg, err := a.configLoader.Load(a.cwd)
		if err != nil {
			return zerr.Wrap(err, "failed to load configuration")
		}
		socketPath = cfg.StatusSocket
	}

	client, err := a.status.Dial(socketPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	report, err := client.Status(ctx)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "status query failed"), "socket", socketPath)
	}

	_, err = fmt.Fprintf(w, "session: %s\nstream:  %s\n", report.Session, report.Stream)
	return err
}

// SimOptions configuration for the Sim method.
type SimOptions struct {
	Addr      string
	Identity  string
	Tick      time.Duration
	DropEvery time.Duration
	Seed      uint64
}

// Sim serves the simulated backend until ctx is done.
func (a *App) Sim(ctx context.Context, opts SimOptions) error {
	if opts.Identity == "" {
		cfg, err := a.configLoader.Load(a.cwd)
		if err != nil {
			return zerr.Wrap(err, "failed to load configuration")
		}
		opts.Identity = cfg.Identity
	}

	sim := simulator.New(a.logger, simulator.Options{
		Identity:  opts.Identity,
		Tick:      opts.Tick,
		DropEvery: opts.DropEvery,
		Seed:      opts.Seed,
	})
	return sim.Listen(ctx, opts.Addr)
}

func (a *App) openSession() (*session.Session, error) {
	cfg, err := a.configLoader.Load(a.cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return a.sessions.New(cfg, a.sessionOpts...)
}

func writeJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return zerr.Wrap(err, "failed to format payload")
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
