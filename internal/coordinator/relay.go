package coordinator

import (
	"encoding/json"

	"github.com/hongnhan/livesignal/internal/model"
)

// Relay forwards a negotiation message to a single named connection without
// interpreting the payload. A target that is not registered means the
// message is silently dropped; the transport is best effort by design.
func (c *Coordinator) Relay(kind, fromID, targetID, roomID string, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.conns[targetID]; !ok || targetID == fromID {
		c.metrics.SignalDropped(kind)
		c.logger.Debug().Str("kind", kind).Str("target", targetID).Msg("relay target not connected, dropped")
		return
	}

	c.metrics.SignalRelayed(kind)
	c.send(targetID, model.SignalMessage{
		Type:     kind,
		SenderID: fromID,
		RoomID:   roomID,
		Payload:  payload,
	})
}

// RequestStream relays a viewer's WebRTC stream request to the room's
// broadcaster, but only when that broadcaster is the system-wide live one.
// Otherwise the viewer is told there is no live broadcaster to ask.
func (c *Coordinator) RequestStream(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.conns[connID]; !ok {
		return
	}

	r, ok := c.rooms[roomID]
	if !ok || r.broadcaster == "" || r.broadcaster != c.liveID {
		c.send(connID, map[string]interface{}{
			"type":    model.EventNoLiveAdmin,
			"room_id": roomID,
		})
		return
	}

	c.metrics.SignalRelayed(model.EventViewerRequest)
	c.send(r.broadcaster, map[string]interface{}{
		"type":      model.EventViewerRequest,
		"viewer_id": connID,
		"room_id":   roomID,
	})
}
