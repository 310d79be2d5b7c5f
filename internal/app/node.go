package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/vigil/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/vigil/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/vigil/internal/adapters/notifier"  //nolint:depguard // Wired in app layer
	"go.trai.ch/vigil/internal/adapters/status"    //nolint:depguard // Wired in app layer
	"go.trai.ch/vigil/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/vigil/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/engine/session"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			session.NodeID,
			telemetry.NodeID,
			notifier.HubNodeID,
			status.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := graft.Dep[*session.Factory](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
	if err != nil {
		return nil, err
	}

	hub, err := graft.Dep[*notifier.Hub](ctx)
	if err != nil {
		return nil, err
	}

	connector, err := graft.Dep[ports.StatusConnector](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.FileWatcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, sessions, tracer, hub, connector, fileWatcher, log), nil
}
