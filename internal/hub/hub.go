package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Router receives inbound traffic and disconnect notifications from the
// transport layer.
type Router interface {
	HandleMessage(clientID string, data []byte)
	HandleDisconnect(clientID string)
}

// Options tunes the WebSocket transport.
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultOptions returns the transport defaults.
func DefaultOptions() Options {
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     30 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     256,
	}
}

type directMessage struct {
	clientID string
	data     []byte
}

// client is a connected WebSocket peer.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub maintains the set of active clients and moves messages between the
// coordinator and their connections.
type Hub struct {
	opts   Options
	logger zerolog.Logger

	// Registered clients
	clients map[string]*client
	mu      sync.RWMutex

	// Outbound traffic
	broadcast chan []byte
	direct    chan directMessage

	// Unregister requests from client read pumps
	unregister chan *client

	// Stop channel
	stopChan chan struct{}

	router Router
}

// New creates a new hub
func New(opts Options, logger zerolog.Logger) *Hub {
	if opts.SendBuffer <= 0 {
		opts = DefaultOptions()
	}
	return &Hub{
		opts:       opts,
		logger:     logger,
		clients:    make(map[string]*client),
		broadcast:  make(chan []byte, opts.SendBuffer),
		direct:     make(chan directMessage, opts.SendBuffer),
		unregister: make(chan *client),
		stopChan:   make(chan struct{}),
	}
}

// SetRouter wires the inbound message handler. Must be called before the
// first client registers.
func (h *Hub) SetRouter(r Router) {
	h.router = r
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case data := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow client, drop the connection.
					go c.conn.Close()
				}
			}
			h.mu.RUnlock()

		case msg := <-h.direct:
			h.mu.RLock()
			c, ok := h.clients[msg.clientID]
			h.mu.RUnlock()
			if ok {
				select {
				case c.send <- msg.data:
				default:
					go c.conn.Close()
				}
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug().Str("client_id", c.id).Msg("client unregistered")

		case <-h.stopChan:
			h.mu.Lock()
			for id, c := range h.clients {
				c.conn.Close()
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// RegisterClient registers a new WebSocket client and starts its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, clientID string) {
	c := &client{
		hub:  h,
		conn: conn,
		id:   clientID,
		send: make(chan []byte, h.opts.SendBuffer),
	}

	h.mu.Lock()
	h.clients[clientID] = c
	h.mu.Unlock()
	h.logger.Debug().Str("client_id", clientID).Msg("client registered")

	go c.writePump()
	go c.readPump()
}

// Send delivers a message to a specific client. Unknown clients are
// ignored.
func (h *Hub) Send(clientID string, data []byte) {
	h.direct <- directMessage{clientID: clientID, data: data}
}

// Broadcast delivers a message to all clients.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// Terminate forcibly closes a client's connection. The close is best
// effort and never waits for the peer.
func (h *Hub) Terminate(clientID string) {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	go func() {
		deadline := time.Now().Add(h.opts.WriteWait)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced"), deadline)
		c.conn.Close()
	}()
	h.logger.Warn().Str("client_id", clientID).Msg("client terminated")
}

// Close closes the hub
func (h *Hub) Close() {
	close(h.stopChan)
}

// removeClient hands the client to the hub goroutine for removal. The send
// channel is only ever closed there, so delivery can never race the close.
func (h *Hub) removeClient(c *client) {
	select {
	case h.unregister <- c:
	case <-h.stopChan:
	}
}

// readPump pumps messages from the WebSocket connection to the router.
func (c *client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
		if c.hub.router != nil {
			c.hub.router.HandleDisconnect(c.id)
		}
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.opts.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("client_id", c.id).Msg("websocket read error")
			}
			break
		}
		if c.hub.router != nil {
			c.hub.router.HandleMessage(c.id, message)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
