package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/backend"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
)

var ts = time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)

func newClient(t *testing.T, h http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL + "/api/v1")
	require.NoError(t, err)
	return backend.NewClient(base, srv.Client())
}

func TestClient_Query(t *testing.T) {
	var gotPath string
	var gotParams []string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotParams = r.URL.Query()["p"]
		_ = json.NewEncoder(w).Encode(backend.QueryResponse{
			Timestamp: ts,
			Payload:   json.RawMessage(`{"balance":12}`),
		})
	}))

	snap, err := client.Query(context.Background(), domain.NewKey(domain.DomainUserBalances, "alice"))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/query/user-balances", gotPath)
	assert.Equal(t, []string{"alice"}, gotParams)
	assert.JSONEq(t, `{"balance":12}`, string(snap.Payload))
	assert.True(t, ts.Equal(snap.Timestamp))
}

func TestClient_QueryWithoutTimestamp(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"payload":[1,2,3]}`)
	}))

	snap, err := client.Query(context.Background(), domain.NewKey(domain.DomainMetrics))
	require.NoError(t, err)
	assert.True(t, snap.Timestamp.IsZero())
}

func TestClient_QueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
		message string
	}{
		{
			name: "backend rejection",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"error":"no such domain"}`)
			},
			want:    domain.ErrBackend,
			message: "no such domain",
		},
		{
			name: "rejection without body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want:    domain.ErrBackend,
			message: "Bad Gateway",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"payload":`)
			},
			want: domain.ErrProtocol,
		},
		{
			name: "missing payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"timestamp":"2026-03-01T12:00:00Z"}`)
			},
			want: domain.ErrProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, tt.handler)

			_, err := client.Query(context.Background(), domain.NewKey(domain.DomainPoolList))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestClient_QueryTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	client := newClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Query(ctx, domain.NewKey(domain.DomainMetrics))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestClient_QueryUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()

	client := backend.NewClient(base, nil)
	_, err = client.Query(context.Background(), domain.NewKey(domain.DomainMetrics))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_Mutate(t *testing.T) {
	var gotPath, gotMethod, gotType string
	var gotBody map[string]any
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"actor":"alice","result":{"txId":"0xabc"}}`)
	}))

	ack, err := client.Mutate(context.Background(), domain.MutationVote, json.RawMessage(`{"proposalId":"p1","option":"yes"}`))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/mutate/vote", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "p1", gotBody["proposalId"])
	assert.Equal(t, "alice", ack.Actor)
	assert.JSONEq(t, `{"txId":"0xabc"}`, string(ack.Result))
}

func TestClient_MutateRejected(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":"insufficient balance"}`)
	}))

	_, err := client.Mutate(context.Background(), domain.MutationSwap, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.Contains(t, err.Error(), "insufficient balance")
}

// streamServer runs a websocket endpoint whose behavior after the hello is
// decided by serve.
func streamServer(t *testing.T, serve func(ws *websocket.Conn, hello backend.Hello)) *backend.Dialer {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = ws.Close() }()

		var hello backend.Hello
		if err := ws.ReadJSON(&hello); err != nil {
			return
		}
		serve(ws, hello)
	}))
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return backend.NewDialer(backend.StreamURL(base))
}

func ack(ws *websocket.Conn, hello backend.Hello) {
	_ = ws.WriteJSON(backend.Envelope{Type: backend.AckType, Subscriptions: hello.Subscriptions})
}

func TestDialer_DialAndRecv(t *testing.T) {
	helloCh := make(chan backend.Hello, 1)
	dialer := streamServer(t, func(ws *websocket.Conn, hello backend.Hello) {
		helloCh <- hello
		ack(ws, hello)
		ack(ws, hello)
		_ = ws.WriteJSON(backend.Envelope{Type: domain.DomainMetrics, Timestamp: ts, Payload: json.RawMessage(`{"tps":0.91}`)})
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := dialer.Dial(ctx, "client-1", []string{domain.DomainMetrics, domain.DomainHarmonics})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	hello := <-helloCh
	assert.Equal(t, "client-1", hello.ClientID)
	assert.Equal(t, []string{"metrics", "harmonics"}, hello.Subscriptions)

	ev, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, domain.DomainMetrics, ev.Domain)
	assert.True(t, ts.Equal(ev.Timestamp))
	assert.JSONEq(t, `{"tps":0.91}`, string(ev.Payload))

	_, err = conn.Recv()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestDialer_MalformedFrameEndsConnection(t *testing.T) {
	dialer := streamServer(t, func(ws *websocket.Conn, hello backend.Hello) {
		ack(ws, hello)
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_, _, _ = ws.ReadMessage()
	})

	conn, err := dialer.Dial(context.Background(), "c", []string{domain.DomainMetrics})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Recv()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProtocol)
}

func TestDialer_HandshakeErrors(t *testing.T) {
	tests := []struct {
		name  string
		serve func(ws *websocket.Conn, hello backend.Hello)
		want  error
	}{
		{
			name: "wrong first message",
			serve: func(ws *websocket.Conn, _ backend.Hello) {
				_ = ws.WriteJSON(backend.Envelope{Type: domain.DomainMetrics})
			},
			want: domain.ErrProtocol,
		},
		{
			name: "partial ack",
			serve: func(ws *websocket.Conn, _ backend.Hello) {
				_ = ws.WriteJSON(backend.Envelope{Type: backend.AckType, Subscriptions: []string{domain.DomainMetrics}})
			},
			want: domain.ErrProtocol,
		},
		{
			name: "no ack",
			serve: func(ws *websocket.Conn, _ backend.Hello) {
				_, _, _ = ws.ReadMessage()
			},
			want: domain.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := streamServer(t, tt.serve)

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			_, err := dialer.Dial(ctx, "c", []string{domain.DomainMetrics, domain.DomainHarmonics})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDialer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()

	_, err = backend.NewDialer(backend.StreamURL(base)).Dial(context.Background(), "c", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestFactory_Open(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.APIURL = "https://console.example.com/api/v1"

	b, err := backend.NewFactory(nil).Open(cfg)
	require.NoError(t, err)
	assert.Implements(t, (*ports.SnapshotQuerier)(nil), b.Querier)
	assert.Implements(t, (*ports.MutationSender)(nil), b.Sender)
	assert.Implements(t, (*ports.StreamDialer)(nil), b.Dialer)
}

func TestFactory_OpenRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"ftp://host/api", "not a url", "http://"} {
		cfg := domain.DefaultConfig()
		cfg.APIURL = raw

		_, err := backend.NewFactory(nil).Open(cfg)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig, raw)
	}
}

func TestStreamURL(t *testing.T) {
	for in, want := range map[string]string{
		"http://127.0.0.1:8088/api/v1": "ws://127.0.0.1:8088/api/v1/stream",
		"https://console.example.com/": "wss://console.example.com/stream",
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, backend.StreamURL(u).String())
		assert.False(t, strings.HasSuffix(backend.StreamURL(u).Path, "//stream"))
	}
}
