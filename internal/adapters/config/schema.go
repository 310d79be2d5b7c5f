package config

import "time"

// Vigilfile represents the structure of the vigil.yaml configuration file.
type Vigilfile struct {
	Version         string             `yaml:"version"`
	API             string             `yaml:"api"`
	ClientID        string             `yaml:"clientId"`
	Identity        string             `yaml:"identity"`
	Stream          *StreamDTO         `yaml:"stream"`
	FetchTimeout    time.Duration      `yaml:"fetchTimeout"`
	MutationTimeout time.Duration      `yaml:"mutationTimeout"`
	StaleAfter      time.Duration      `yaml:"staleAfter"`
	TickInterval    time.Duration      `yaml:"tickInterval"`
	Polls           map[string]PollDTO `yaml:"polls"`
	StatusSocket    string             `yaml:"statusSocket"`
}

// StreamDTO configures the push stream.
type StreamDTO struct {
	Domains          []string      `yaml:"domains"`
	BaseDelay        time.Duration `yaml:"baseDelay"`
	MaxDelay         time.Duration `yaml:"maxDelay"`
	Ceiling          int           `yaml:"ceiling"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
}

// PollDTO configures the refresh cadence of one domain.
type PollDTO struct {
	Interval time.Duration `yaml:"interval"`
	Params   []string      `yaml:"params"`
}
