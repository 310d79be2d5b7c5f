package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/vigil/internal/core/domain"
)

// Renderer wraps the dashboard Bubble Tea model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	program := tea.NewProgram(model, opts...)
	return &Renderer{
		program: program,
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the TUI has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// OnEntry forwards an entry change to the TUI.
func (r *Renderer) OnEntry(entry domain.CacheEntry) {
	r.program.Send(MsgEntry{Entry: entry})
}

// OnConnState forwards a stream transition to the TUI.
func (r *Renderer) OnConnState(state domain.ConnState) {
	r.program.Send(MsgConnState{State: state})
}

// OnNotification forwards a notification to the TUI.
func (r *Renderer) OnNotification(n domain.Notification) {
	r.program.Send(MsgNotification{Notification: n})
}

// OnActivity forwards a completed operation to the TUI.
func (r *Renderer) OnActivity(name string, duration time.Duration, err error) {
	r.program.Send(MsgActivity{Name: name, Duration: duration, Err: err})
}

// Program returns the underlying tea.Program for testing.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
