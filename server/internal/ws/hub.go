package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/marocz/launchdash/server/internal/api"
	"github.com/marocz/launchdash/server/internal/controls"
	"github.com/marocz/launchdash/server/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageSize bounds one inbound control message.
	maxMessageSize = 4096
)

// Event names.
const (
	EventControls = "controls"
	EventOptions  = "options"
	EventFigures  = "figures"
	EventError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins - callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// inbound is the JSON envelope received from clients.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type errorData struct {
	Error string `json:"error"`
}

// Hub manages WebSocket client connections and their control state.
type Hub struct {
	builder  *api.Builder
	interval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	state   controls.State
	version uint64
}

// New creates a Hub that computes figures with b and checks for dataset
// reloads every interval.
func New(b *api.Builder, interval time.Duration) *Hub {
	return &Hub{
		builder:  b,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run starts the reload ticker loop. Run blocks until ctx is cancelled, then
// closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			h.refresh()
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends options and default figures immediately, then answers control
// messages until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)
	slog.Debug("ws: client connected", "client", c.id, "remote", r.RemoteAddr)

	// Send options and figures immediately so the UI has data right away.
	c.mu.Lock()
	h.reset(c, h.builder.Store().Current())
	c.mu.Unlock()

	go c.writePump()
	h.readPump(c) // blocks until connection closes
	slog.Debug("ws: client disconnected", "client", c.id)
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// deliver queues data for c. A client whose buffer is full is disconnected.
func (h *Hub) deliver(c *client, data []byte) {
	h.mu.RLock()
	_, live := h.clients[c]
	full := false
	if live {
		select {
		case c.send <- data:
		default:
			full = true
		}
	}
	h.mu.RUnlock()

	if full {
		slog.Warn("ws: client send buffer full, disconnecting", "client", c.id)
		h.unregister(c)
	}
}

func (h *Hub) emit(c *client, event string, data interface{}) {
	b, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		slog.Error("ws: marshal message", "event", event, "err", err)
		return
	}
	h.deliver(c, b)
}

func (h *Hub) emitError(c *client, err error) {
	h.emit(c, EventError, errorData{Error: err.Error()})
}

// reset puts c on the defaults of e and pushes options and both figures.
// c.mu must be held.
func (h *Hub) reset(c *client, e store.Entry) {
	c.state = controls.Default(e.Table)
	c.version = e.Version
	h.emit(c, EventOptions, h.builder.Options(e.Table))
	h.push(c, e, true, true)
}

// push recomputes the affected figures for c. c.mu must be held.
func (h *Hub) push(c *client, e store.Entry, site, payload bool) {
	h.emit(c, EventFigures, h.builder.Figures(e, c.state, site, payload))
}

// handle applies one inbound control message.
func (h *Hub) handle(c *client, raw []byte) error {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}
	if in.Event != EventControls {
		return fmt.Errorf("unknown event %q", in.Event)
	}
	var msg controls.Message
	if err := json.Unmarshal(in.Data, &msg); err != nil {
		return fmt.Errorf("malformed controls: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := h.builder.Store().Current()
	if e.Version != c.version {
		// The table changed under the client; start from the new defaults.
		h.reset(c, e)
	}
	next, err := msg.Apply(c.state, e.Table)
	if err != nil {
		return err
	}
	site, payload := controls.Changes(c.state, next)
	c.state = next
	if site || payload {
		h.push(c, e, site, payload)
	}
	return nil
}

// refresh resets every client that has not seen the current dataset version.
func (h *Hub) refresh() {
	e := h.builder.Store().Current()

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		if c.version != e.Version {
			h.reset(c, e)
		}
		c.mu.Unlock()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads control messages until the connection closes.
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := h.handle(c, raw); err != nil {
			slog.Debug("ws: rejected control message", "client", c.id, "err", err)
			h.emitError(c, err)
		}
	}
}
