// Package linear provides a line-oriented renderer for CI and piped output.
package linear

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/ui/format"
	"go.trai.ch/vigil/internal/ui/output"
	"go.trai.ch/vigil/internal/ui/style"
)

// payloadWidth bounds the payload summary printed per update.
const payloadWidth = 96

type seen struct {
	digest uint64
	status domain.EntryStatus
}

// Renderer implements ports.Renderer by printing one line per change.
type Renderer struct {
	w        io.Writer
	out      *termenv.Output
	activity bool

	mu      sync.Mutex
	entries map[domain.DomainKey]seen
	phase   domain.ConnState

	done     chan struct{}
	stopOnce sync.Once
}

// NewRenderer creates a Renderer writing to w. A nil w selects stdout.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{
		w:       w,
		out:     output.NewWithProfile(w, output.ColorProfileANSI),
		entries: make(map[domain.DomainKey]seen),
		done:    make(chan struct{}),
	}
}

// WithActivity makes the renderer print every completed traced operation.
func (r *Renderer) WithActivity(enable bool) *Renderer {
	r.activity = enable
	return r
}

// Start is a no-op; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop releases Wait. It is safe to call more than once.
func (r *Renderer) Stop() error {
	r.stopOnce.Do(func() { close(r.done) })
	return nil
}

// Wait blocks until Stop is called.
func (r *Renderer) Wait() error {
	<-r.done
	return nil
}

// OnEntry prints new values, invalidations and failures. Fetching
// transitions and unchanged refreshes are skipped.
func (r *Renderer) OnEntry(entry domain.CacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, known := r.entries[entry.Key]
	r.entries[entry.Key] = seen{digest: entry.Digest, status: entry.Status}

	prefix := r.out.String(fmt.Sprintf("[%s]", entry.Key)).Faint().String()
	glyph := format.StatusGlyph(entry.Status)

	switch entry.Status {
	case domain.StatusFresh:
		if known && prev.digest == entry.Digest && prev.status == domain.StatusFresh {
			return
		}
		if known && prev.digest == entry.Digest {
			r.printf("%s %s unchanged\n", prefix, r.color(glyph, style.Green))
			return
		}
		r.printf("%s %s %s\n", prefix, r.color(glyph, style.Green), format.Payload(entry.Value, payloadWidth))
	case domain.StatusStale:
		if known && prev.status == domain.StatusStale {
			return
		}
		r.printf("%s %s stale\n", prefix, r.color(glyph, style.Yellow))
	case domain.StatusErrored:
		if known && prev.status == domain.StatusErrored {
			return
		}
		msg := "refresh failed"
		if entry.LastError != nil {
			msg += ": " + entry.LastError.Error()
		}
		r.printf("%s %s %s\n", prefix, r.color(glyph, style.Red), msg)
	}
}

// OnConnState prints every stream transition.
func (r *Renderer) OnConnState(state domain.ConnState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state == r.phase {
		return
	}
	r.phase = state

	glyph := format.PhaseGlyph(state.Phase)
	color := style.Slate
	switch state.Phase {
	case domain.PhaseConnected:
		color = style.Green
	case domain.PhaseFailed:
		color = style.Red
	case domain.PhaseReconnecting:
		color = style.Yellow
	}
	r.printf("%s stream %s\n", r.color(glyph, color), state)
}

// OnNotification prints the outcome of a mutation or a stream failure.
func (r *Renderer) OnNotification(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.Severity == domain.SeverityError {
		msg := n.Message
		if n.Err != nil {
			msg += ": " + n.Err.Error()
		}
		r.printf("%s %s\n", r.color(style.Cross, style.Red), msg)
		return
	}
	r.printf("%s %s\n", r.color(style.Check, style.Green), n.Message)
}

// OnActivity prints a completed operation when activity output is enabled.
func (r *Renderer) OnActivity(name string, duration time.Duration, err error) {
	if !r.activity {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%s %s %s", style.Dot, name, duration.Round(time.Millisecond))
	if err != nil {
		line += " (" + err.Error() + ")"
	}
	r.printf("%s\n", r.out.String(line).Faint().String())
}

func (r *Renderer) color(s string, c lipgloss.Color) string {
	return r.out.String(s).Foreground(termenv.RGBColor(string(c))).String()
}

// printf must be called with mu held.
func (r *Renderer) printf(layout string, args ...any) {
	_, _ = fmt.Fprintf(r.w, layout, args...)
}
