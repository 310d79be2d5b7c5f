package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// writeWait bounds every write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long the connection may stay silent before it is
	// considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1 << 20
)

// Dialer implements ports.StreamDialer over a websocket.
type Dialer struct {
	url    string
	dialer *websocket.Dialer
}

// NewDialer returns a Dialer for the websocket endpoint u.
func NewDialer(u *url.URL) *Dialer {
	return &Dialer{
		url: u.String(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: writeWait,
		},
	}
}

// Dial connects, sends the subscription hello and waits for the ack. The
// handshake is bounded by ctx.
func (d *Dialer) Dial(ctx context.Context, clientID string, domains []string) (ports.StreamConn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, d.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, zerr.With(classifyTransport(ctx, err), "url", d.url)
	}

	if err := handshake(ctx, ws, clientID, domains); err != nil {
		_ = ws.Close()
		return nil, err
	}

	conn := &Conn{ws: ws, done: make(chan struct{})}
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go conn.keepAlive()

	return conn, nil
}

func handshake(ctx context.Context, ws *websocket.Conn, clientID string, domains []string) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	_ = ws.SetWriteDeadline(deadline)
	_ = ws.SetReadDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		_ = ws.SetReadDeadline(time.Now())
	})
	defer stop()

	hello := Hello{ClientID: clientID, Subscriptions: domains}
	if err := ws.WriteJSON(hello); err != nil {
		return classifyTransport(ctx, err)
	}

	var ack Envelope
	if err := ws.ReadJSON(&ack); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return errors.Join(domain.ErrProtocol, err)
		}
		if ctx.Err() != nil || isTimeout(err) {
			return errors.Join(domain.ErrTimeout, err)
		}
		return errors.Join(domain.ErrTransport, err)
	}
	if ack.Type != AckType {
		return zerr.With(zerr.Wrap(domain.ErrProtocol, "expected subscription ack"), "type", ack.Type)
	}
	for _, name := range domains {
		if !slices.Contains(ack.Subscriptions, name) {
			return zerr.With(zerr.Wrap(domain.ErrProtocol, "subscription not acknowledged"), "domain", name)
		}
	}

	_ = ws.SetWriteDeadline(time.Time{})
	return nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// Conn is one live websocket subscription.
type Conn struct {
	ws *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// Recv reads the next domain event. Acks repeated by the server are skipped.
func (c *Conn) Recv() (domain.StreamEvent, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return domain.StreamEvent{}, errors.Join(domain.ErrTransport, err)
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return domain.StreamEvent{}, errors.Join(domain.ErrProtocol, err)
		}
		if env.Type == AckType {
			continue
		}
		if env.Type == "" {
			return domain.StreamEvent{}, zerr.Wrap(domain.ErrProtocol, "stream message has no type")
		}

		return domain.StreamEvent{
			Domain:    env.Type,
			Timestamp: env.Timestamp,
			Payload:   env.Payload,
		}, nil
	}
}

// Close sends a close frame and releases the socket.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()

		err = c.ws.Close()
	})
	return err
}

func (c *Conn) keepAlive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				_ = c.ws.Close()
				return
			}
		}
	}
}
