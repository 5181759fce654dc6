package coordinator

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hongnhan/livesignal/internal/metrics"
	"github.com/hongnhan/livesignal/internal/model"
	"github.com/hongnhan/livesignal/internal/transcode"
)

// chatWindow is the number of chat messages kept in memory.
const chatWindow = 100

// Sender is the one-way interface to the transport layer. Implementations
// must not block: delivery is best effort and Terminate is fire-and-forget.
type Sender interface {
	// Send delivers data to a single connection. Unknown IDs are ignored.
	Send(connID string, data []byte)

	// Broadcast delivers data to every connection.
	Broadcast(data []byte)

	// Terminate forcibly closes a connection's transport.
	Terminate(connID string)
}

// connection is one registered transport session.
type connection struct {
	id     string
	role   string // model.RoleBroadcaster, model.RoleViewer or "" (unassigned)
	roomID string
}

// room groups one broadcaster and its viewers.
type room struct {
	id          string
	broadcaster string
	viewers     map[string]struct{}
	members     map[string]struct{} // every connection in the room, including unassigned ones
}

// Coordinator owns all shared signaling state: the connection table, the
// room table, the live-broadcaster slot and the chat log. Every state
// transition runs inside a single critical section so that the
// one-live-broadcaster invariant holds under concurrent connections.
type Coordinator struct {
	mu     sync.Mutex
	conns  map[string]*connection
	rooms  map[string]*room
	liveID string // current live broadcaster, empty when offline
	status model.StreamStatus
	chat   []model.ChatMessage

	sender     Sender
	transcoder transcode.Controller
	metrics    metrics.Collector
	logger     zerolog.Logger
}

// New creates a coordinator bound to the given transport sender and
// transcoder collaborator.
func New(sender Sender, tc transcode.Controller, m metrics.Collector, logger zerolog.Logger) *Coordinator {
	if m == nil {
		m = metrics.Noop{}
	}
	if tc == nil {
		tc = transcode.Noop{}
	}
	return &Coordinator{
		conns:      make(map[string]*connection),
		rooms:      make(map[string]*room),
		status:     model.StatusOffline,
		sender:     sender,
		transcoder: tc,
		metrics:    m,
		logger:     logger,
	}
}

// Register records a new connection and sends it the initial snapshot:
// chat history, current stream status and the updated user count. The user
// count is also broadcast to everyone else.
func (c *Coordinator) Register(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conns[connID] = &connection{id: connID}
	c.metrics.ClientConnected()
	c.logger.Info().Str("conn_id", connID).Int("users", len(c.conns)).Msg("connection registered")

	history := make([]model.ChatMessage, len(c.chat))
	copy(history, c.chat)
	c.send(connID, map[string]interface{}{
		"type":     model.EventChatHistory,
		"messages": history,
	})
	c.send(connID, c.statusEventLocked(""))
	c.broadcastUserCountLocked()
}

// Deregister removes a connection, cascading through room membership and
// the broadcaster arbiter before the identity is forgotten.
func (c *Coordinator) Deregister(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.conns[connID]
	if !ok {
		return
	}

	c.leaveLocked(conn)
	if c.liveID == connID {
		c.releaseLocked("broadcaster disconnected")
	}
	delete(c.conns, connID)

	c.metrics.ClientDisconnected()
	c.logger.Info().Str("conn_id", connID).Int("users", len(c.conns)).Msg("connection deregistered")
	c.broadcastUserCountLocked()
}

// Status returns the current stream status and the live broadcaster ID.
func (c *Coordinator) Status() (model.StreamStatus, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.liveID
}

// UserCount returns the number of registered connections.
func (c *Coordinator) UserCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

// Messages returns a copy of the chat window, oldest first.
func (c *Coordinator) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.ChatMessage, len(c.chat))
	copy(out, c.chat)
	return out
}

// statusEventLocked builds the stream_status notification for the current
// state. Callers hold the coordinator lock.
func (c *Coordinator) statusEventLocked(reason string) model.StatusEvent {
	return model.StatusEvent{
		Type:          model.EventStreamStatus,
		Status:        c.status,
		BroadcasterID: c.liveID,
		Reason:        reason,
	}
}

func (c *Coordinator) broadcastUserCountLocked() {
	c.broadcast(map[string]interface{}{
		"type":  model.EventUserCount,
		"count": len(c.conns),
	})
}

// send marshals v and delivers it to a single connection.
func (c *Coordinator) send(connID string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal outbound event")
		return
	}
	c.sender.Send(connID, data)
}

// broadcast marshals v and delivers it to every connection.
func (c *Coordinator) broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal outbound event")
		return
	}
	c.sender.Broadcast(data)
}
