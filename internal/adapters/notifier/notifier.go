// Package notifier fans user-visible notifications out to the log and to any
// attached renderers.
package notifier

import (
	"sync"

	"github.com/juju/clock"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Hub implements ports.Notifier.
type Hub struct {
	logger ports.Logger
	clock  clock.Clock

	mu        sync.Mutex
	nextID    int
	renderers map[int]ports.Renderer
}

// New returns a Hub that logs through logger.
func New(logger ports.Logger, clk clock.Clock) *Hub {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Hub{
		logger:    logger,
		clock:     clk,
		renderers: make(map[int]ports.Renderer),
	}
}

// Attach forwards notifications to r until the returned function is called.
func (h *Hub) Attach(r ports.Renderer) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.renderers[id] = r

	return func() {
		h.mu.Lock()
		delete(h.renderers, id)
		h.mu.Unlock()
	}
}

// Notify logs n and hands it to every attached renderer.
func (h *Hub) Notify(n domain.Notification) {
	if n.At.IsZero() {
		n.At = h.clock.Now()
	}

	switch {
	case n.Severity == domain.SeverityError && n.Err != nil:
		h.logger.Error(zerr.Wrap(n.Err, n.Message))
	case n.Severity == domain.SeverityError:
		h.logger.Error(zerr.New(n.Message))
	default:
		h.logger.Info(n.Message)
	}

	h.mu.Lock()
	targets := make([]ports.Renderer, 0, len(h.renderers))
	for _, r := range h.renderers {
		targets = append(targets, r)
	}
	h.mu.Unlock()

	for _, r := range targets {
		r.OnNotification(n)
	}
}
