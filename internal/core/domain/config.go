package domain

import "time"

// PollSpec configures periodic refresh of one key.
type PollSpec struct {
	Domain   string
	Params   []string
	Interval time.Duration
}

// Key returns the DomainKey polled by the spec.
func (p PollSpec) Key() DomainKey {
	return NewKey(p.Domain, p.Params...)
}

// Config is the validated engine configuration.
type Config struct {
	// APIURL is the base URL of the backend, e.g. http://localhost:8088/api/v1.
	APIURL string
	// ClientID identifies this console to the stream.
	ClientID string
	// Identity is the fixed caller identity used for $self keys.
	Identity string

	StreamDomains    []string
	Backoff          BackoffPolicy
	HandshakeTimeout time.Duration

	FetchTimeout    time.Duration
	MutationTimeout time.Duration
	StaleAfter      time.Duration
	TickInterval    time.Duration

	Polls []PollSpec

	StatusSocket string
	// Path is the file the config was read from; empty for built-in defaults.
	Path string
}

// DefaultConfig returns the configuration used when no file is present.
// Identity defaults to "operator" and polls cover every catalog domain that has a cadence.
func DefaultConfig() *Config {
	cfg := &Config{
		APIURL:           DefaultAPIURL,
		Identity:         DefaultIdentity,
		StreamDomains:    StreamedDomains(),
		Backoff:          DefaultBackoffPolicy(),
		HandshakeTimeout: 10 * time.Second,
		FetchTimeout:     10 * time.Second,
		MutationTimeout:  15 * time.Second,
		StaleAfter:       time.Minute,
		TickInterval:     250 * time.Millisecond,
		StatusSocket:     DefaultStatusSocketPath(),
	}
	cfg.Polls = DefaultPolls(cfg.Identity)
	return cfg
}

// DefaultPolls derives one poll per catalog domain with a cadence.
// User-scoped domains are polled for identity, paged domains for page 1.
func DefaultPolls(identity string) []PollSpec {
	polls := make([]PollSpec, 0, len(Catalog))
	for _, spec := range Catalog {
		if spec.PollInterval == 0 {
			continue
		}
		params := make([]string, len(spec.ParamNames))
		for i, name := range spec.ParamNames {
			switch name {
			case "user":
				params[i] = identity
			default:
				params[i] = "1"
			}
		}
		polls = append(polls, PollSpec{Domain: spec.Name, Params: params, Interval: spec.PollInterval})
	}
	return polls
}
