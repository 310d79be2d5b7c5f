package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/adapters/backend"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/vigil/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/vigil/internal/adapters/notifier"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/vigil/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/vigil/internal/core/ports"
)

// NodeID is the unique identifier for the session factory Graft node.
const NodeID graft.ID = "engine.session"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			backend.NodeID,
			notifier.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			backends, err := graft.Dep[ports.BackendFactory](ctx)
			if err != nil {
				return nil, err
			}

			notes, err := graft.Dep[ports.Notifier](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(backends, notes, tracer, log), nil
		},
	})
}
