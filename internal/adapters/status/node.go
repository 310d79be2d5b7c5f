package status

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/core/ports"
)

// NodeID is the unique identifier for the status connector Graft node.
const NodeID graft.ID = "adapter.status"

func init() {
	graft.Register(graft.Node[ports.StatusConnector]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StatusConnector, error) {
			return NewConnector(), nil
		},
	})
}
