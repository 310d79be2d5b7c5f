// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/vigil/internal/adapters/backend"
	_ "go.trai.ch/vigil/internal/adapters/config"
	_ "go.trai.ch/vigil/internal/adapters/logger"
	_ "go.trai.ch/vigil/internal/adapters/notifier"
	_ "go.trai.ch/vigil/internal/adapters/status"
	_ "go.trai.ch/vigil/internal/adapters/telemetry"
	_ "go.trai.ch/vigil/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/vigil/internal/app"
	_ "go.trai.ch/vigil/internal/engine/session"
)
