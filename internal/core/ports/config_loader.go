package ports

import "go.trai.ch/vigil/internal/core/domain"

// ConfigLoader defines the interface for loading the console configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration file by walking up from cwd.
	// When no file exists it returns domain.DefaultConfig().
	Load(cwd string) (*domain.Config, error)
}
