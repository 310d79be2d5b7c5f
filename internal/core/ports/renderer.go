package ports

import (
	"context"
	"time"

	"go.trai.ch/vigil/internal/core/domain"
)

// Renderer is the abstraction for console output.
// It decouples the engine from presentation, allowing the same session to
// drive either a rich TUI or linear CI logs.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnEntry is called whenever a cache entry changes status or value.
	OnEntry(entry domain.CacheEntry)

	// OnConnState is called on every stream state transition.
	OnConnState(state domain.ConnState)

	// OnNotification is called for each user-visible notification.
	OnNotification(n domain.Notification)

	// OnActivity is called when a traced operation completes.
	OnActivity(name string, duration time.Duration, err error)
}
