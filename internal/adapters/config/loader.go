// Package config provides the configuration loader for vigil.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only vigil.yaml schema version understood.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds vigil.yaml in cwd or one of its parents and returns the merged,
// validated configuration. Without a file the defaults are returned.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, ok := FindConfig(cwd)
	if !ok {
		cfg := domain.DefaultConfig()
		cfg.ClientID = uuid.NewString()
		return cfg, nil
	}
	return l.LoadFile(path)
}

// LoadFile reads and validates the configuration at path.
func (l *Loader) LoadFile(path string) (*domain.Config, error) {
	var file Vigilfile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	cfg, err := l.build(&file)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	cfg.Path = path
	return cfg, nil
}

// FindConfig walks up from cwd looking for vigil.yaml.
func FindConfig(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) build(file *Vigilfile) (*domain.Config, error) {
	if file.Version != "" && file.Version != SupportedVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported version"), "version", file.Version)
	}

	cfg := domain.DefaultConfig()

	if file.API != "" {
		cfg.APIURL = strings.TrimRight(file.API, "/")
	}
	if err := validateAPI(cfg.APIURL); err != nil {
		return nil, err
	}

	cfg.ClientID = file.ClientID
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if file.Identity != "" {
		cfg.Identity = file.Identity
	}

	if err := applyStream(cfg, file.Stream); err != nil {
		return nil, err
	}

	durations := []struct {
		name  string
		value time.Duration
		dst   *time.Duration
	}{
		{"fetchTimeout", file.FetchTimeout, &cfg.FetchTimeout},
		{"mutationTimeout", file.MutationTimeout, &cfg.MutationTimeout},
		{"staleAfter", file.StaleAfter, &cfg.StaleAfter},
		{"tickInterval", file.TickInterval, &cfg.TickInterval},
	}
	for _, d := range durations {
		if err := setDuration(d.name, d.value, d.dst); err != nil {
			return nil, err
		}
	}

	if file.Polls != nil {
		polls, err := buildPolls(file.Polls, cfg.Identity)
		if err != nil {
			return nil, err
		}
		cfg.Polls = polls
	} else {
		cfg.Polls = domain.DefaultPolls(cfg.Identity)
	}

	for _, p := range cfg.Polls {
		if p.Interval < cfg.TickInterval {
			l.Logger.Warn(fmt.Sprintf("poll interval %s for %s is shorter than the tick interval %s", p.Interval, p.Domain, cfg.TickInterval))
		}
	}

	if file.StatusSocket != "" {
		cfg.StatusSocket = expandHome(file.StatusSocket)
	}

	return cfg, nil
}

func validateAPI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "api must be an http or https URL"), "api", raw)
	}
	return nil
}

func applyStream(cfg *domain.Config, dto *StreamDTO) error {
	if dto == nil {
		return nil
	}

	if dto.Domains != nil {
		domains := slices.Clone(dto.Domains)
		slices.Sort(domains)
		domains = slices.Compact(domains)
		for _, name := range domains {
			spec, ok := domain.LookupDomain(name)
			if !ok {
				return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, domain.ErrUnknownDomain.Error()), "domain", name)
			}
			if !spec.Streamed {
				return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "domain is not carried by the stream"), "domain", name)
			}
		}
		cfg.StreamDomains = domains
	}

	if err := setDuration("stream.baseDelay", dto.BaseDelay, &cfg.Backoff.BaseDelay); err != nil {
		return err
	}
	if err := setDuration("stream.maxDelay", dto.MaxDelay, &cfg.Backoff.MaxDelay); err != nil {
		return err
	}
	if err := setDuration("stream.handshakeTimeout", dto.HandshakeTimeout, &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if cfg.Backoff.MaxDelay < cfg.Backoff.BaseDelay {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "stream.maxDelay is below stream.baseDelay"), "maxDelay", cfg.Backoff.MaxDelay.String())
	}

	switch {
	case dto.Ceiling < 0:
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "stream.ceiling must be positive"), "ceiling", dto.Ceiling)
	case dto.Ceiling > 0:
		cfg.Backoff.Ceiling = dto.Ceiling
	}
	return nil
}

func buildPolls(dtos map[string]PollDTO, identity string) ([]domain.PollSpec, error) {
	polls := make([]domain.PollSpec, 0, len(dtos))
	for _, spec := range domain.Catalog {
		dto, ok := dtos[spec.Name]
		if !ok {
			continue
		}

		params := make([]string, len(dto.Params))
		for i, p := range dto.Params {
			if p == domain.SelfParam {
				p = identity
			}
			params[i] = p
		}

		poll := domain.PollSpec{Domain: spec.Name, Params: params, Interval: dto.Interval}
		if err := domain.ValidateKey(poll.Key()); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, err.Error()), "poll", spec.Name)
		}
		if poll.Interval <= 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "poll interval must be positive"), "poll", spec.Name)
		}
		polls = append(polls, poll)
	}

	for name := range dtos {
		if _, ok := domain.LookupDomain(name); !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, domain.ErrUnknownDomain.Error()), "poll", name)
		}
	}
	return polls, nil
}

func setDuration(name string, value time.Duration, dst *time.Duration) error {
	switch {
	case value < 0:
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "duration must be positive"), "field", name)
	case value > 0:
		*dst = value
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by FindConfig or given by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "config")
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, parseErr), "config")
	}

	return nil
}
