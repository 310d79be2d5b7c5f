package status

import "go.trai.ch/vigil/internal/core/ports"

// Connector implements ports.StatusConnector.
type Connector struct{}

// NewConnector returns a Connector.
func NewConnector() *Connector {
	return &Connector{}
}

// Publisher returns a Server for socketPath.
func (c *Connector) Publisher(socketPath string, runner ports.MutationRunner) ports.StatusPublisher {
	return NewServer(socketPath, runner)
}

// Dial returns a Client for socketPath.
func (c *Connector) Dial(socketPath string) (ports.StatusClient, error) {
	return Dial(socketPath)
}
