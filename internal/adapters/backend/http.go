package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/zerr"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 8 << 20

// Client implements ports.SnapshotQuerier and ports.MutationSender over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a Client rooted at base. A nil hc selects a default client;
// deadlines come from the request context.
func NewClient(base *url.URL, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: base, http: hc}
}

// Query fetches the current snapshot for key.
func (c *Client) Query(ctx context.Context, key domain.DomainKey) (domain.Snapshot, error) {
	target := c.base.JoinPath(QueryPath, key.Domain)
	if params := key.Params(); len(params) > 0 {
		q := url.Values{}
		for _, p := range params {
			q.Add(ParamQuery, p)
		}
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return domain.Snapshot{}, zerr.Wrap(err, "failed to build query request")
	}

	var body QueryResponse
	if err := c.do(req, &body); err != nil {
		return domain.Snapshot{}, zerr.With(err, "key", key.String())
	}
	if body.Payload == nil {
		return domain.Snapshot{}, zerr.With(zerr.Wrap(domain.ErrProtocol, "query response has no payload"), "key", key.String())
	}

	return domain.Snapshot{Payload: body.Payload, Timestamp: body.Timestamp}, nil
}

// Mutate submits payload for kind.
func (c *Client) Mutate(ctx context.Context, kind domain.MutationKind, payload json.RawMessage) (domain.Ack, error) {
	target := c.base.JoinPath(MutatePath, string(kind))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return domain.Ack{}, zerr.Wrap(err, "failed to build mutation request")
	}
	req.Header.Set("Content-Type", "application/json")

	var body MutateResponse
	if err := c.do(req, &body); err != nil {
		return domain.Ack{}, zerr.With(err, "kind", string(kind))
	}

	return domain.Ack{Actor: body.Actor, Result: body.Result}, nil
}

// do sends req and decodes a 2xx body into out. Failures are classified as
// transport, timeout, backend or protocol errors.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(req.Context(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return classifyTransport(req.Context(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return zerr.With(errors.Join(domain.ErrBackend, errors.New(msg)), "status", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Join(domain.ErrProtocol, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(domain.ErrTimeout, err)
	}
	return errors.Join(domain.ErrTransport, err)
}
