// Package backend talks to the console API: snapshot queries and mutations
// over HTTP and the push stream over a websocket.
package backend

import (
	"net/http"
	"net/url"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory implements ports.BackendFactory.
type Factory struct {
	http *http.Client
}

// NewFactory returns a Factory sharing hc between the clients it opens.
// A nil hc selects a default client.
func NewFactory(hc *http.Client) *Factory {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Factory{http: hc}
}

// Open builds the clients for cfg.APIURL.
func (f *Factory) Open(cfg *domain.Config) (ports.Backend, error) {
	base, err := ParseAPIURL(cfg.APIURL)
	if err != nil {
		return ports.Backend{}, err
	}

	client := NewClient(base, f.http)
	return ports.Backend{
		Querier: client,
		Sender:  client,
		Dialer:  NewDialer(StreamURL(base)),
	}, nil
}

// ParseAPIURL validates raw as an http(s) API root.
func ParseAPIURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, err.Error()), "api", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "api must be an http or https URL"), "api", raw)
	}
	return u, nil
}

// StreamURL derives the websocket endpoint from the API root.
func StreamURL(base *url.URL) *url.URL {
	u := base.JoinPath(StreamPath)
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u
}
