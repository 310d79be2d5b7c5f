package simulator

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.trai.ch/vigil/internal/adapters/backend"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueueSize  = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// client is one connected stream subscriber.
type client struct {
	hub  *hub
	ws   *websocket.Conn
	subs map[string]struct{}
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// hub tracks connected stream clients.
type hub struct {
	logger ports.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub(logger ports.Logger) *hub {
	return &hub{logger: logger, clients: make(map[*client]struct{})}
}

// accept performs the subscription handshake and registers the client.
// Only domains carried by the stream are acknowledged.
func (h *hub) accept(ws *websocket.Conn) (*client, error) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(writeWait))

	var hello backend.Hello
	if err := ws.ReadJSON(&hello); err != nil {
		return nil, zerr.Wrap(err, "failed to read hello")
	}

	streamed := domain.StreamedDomains()
	cl := &client{
		hub:  h,
		ws:   ws,
		subs: make(map[string]struct{}),
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	acked := make([]string, 0, len(hello.Subscriptions))
	for _, name := range hello.Subscriptions {
		if slices.Contains(streamed, name) {
			cl.subs[name] = struct{}{}
			acked = append(acked, name)
		}
	}

	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(backend.Envelope{Type: backend.AckType, Subscriptions: acked}); err != nil {
		return nil, zerr.Wrap(err, "failed to write ack")
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("stream client " + hello.ClientID + " subscribed")
	return cl, nil
}

func (h *hub) remove(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
}

func (h *hub) broadcast(name string, ts time.Time, payload any) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		targets = append(targets, cl)
	}
	h.mu.Unlock()

	for _, cl := range targets {
		cl.push(name, ts, payload)
	}
}

func (h *hub) dropAll() int {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		targets = append(targets, cl)
	}
	h.mu.Unlock()

	for _, cl := range targets {
		cl.close()
	}
	return len(targets)
}

// push queues an event if the client subscribed to the domain. Slow clients
// lose events rather than stall the hub.
func (c *client) push(name string, ts time.Time, payload any) {
	if _, ok := c.subs[name]; !ok {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(backend.Envelope{Type: name, Timestamp: ts, Payload: raw})
	if err != nil {
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
	}
}

// serve pumps queued events to the socket until it closes.
func (c *client) serve() {
	defer c.hub.remove(c)
	defer c.close()

	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer c.close()
		for {
			if _, _, err := c.ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}
