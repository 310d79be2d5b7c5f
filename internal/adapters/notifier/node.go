package notifier

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/vigil/internal/core/ports"
)

const (
	// HubNodeID is the unique identifier for the concrete Hub Graft node.
	HubNodeID graft.ID = "adapter.notifier.hub"
	// NodeID is the unique identifier for the ports.Notifier Graft node.
	NodeID graft.ID = "adapter.notifier"
)

func init() {
	graft.Register(graft.Node[*Hub]{
		ID:        HubNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Hub, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, nil), nil
		},
	})

	graft.Register(graft.Node[ports.Notifier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{HubNodeID},
		Run: func(ctx context.Context) (ports.Notifier, error) {
			return graft.Dep[*Hub](ctx)
		},
	})
}
