package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the concrete OTel tracer Graft node.
	NodeID graft.ID = "adapter.telemetry"
	// TracerNodeID is the unique identifier for the ports.Tracer Graft node.
	TracerNodeID graft.ID = "adapter.tracer"
)

func init() {
	graft.Register(graft.Node[*OTelTracer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*OTelTracer, error) {
			return NewOTelTracer(InstrumentationName), nil
		},
	})

	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			return graft.Dep[*OTelTracer](ctx)
		},
	})
}
