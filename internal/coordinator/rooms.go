package coordinator

import (
	"github.com/hongnhan/livesignal/internal/model"
)

// JoinRoom adds a connection to a room, creating the room lazily. Viewers
// are recorded in the room's viewer set and an existing broadcaster is told
// about them. Broadcaster joins go through the arbiter first; a rejected
// join leaves the connection in the room unassigned.
func (c *Coordinator) JoinRoom(connID, roomID, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.conns[connID]
	if !ok {
		return
	}
	if conn.roomID != "" {
		// A connection joins at most one room.
		c.logger.Warn().Str("conn_id", connID).Str("room_id", conn.roomID).Msg("join ignored, already in a room")
		return
	}

	r := c.roomLocked(roomID)
	r.members[connID] = struct{}{}
	conn.roomID = roomID

	switch role {
	case model.RoleViewer:
		r.viewers[connID] = struct{}{}
		conn.role = model.RoleViewer
		if r.broadcaster != "" {
			c.send(r.broadcaster, map[string]interface{}{
				"type":    model.EventUserConnected,
				"user_id": connID,
				"role":    model.RoleViewer,
				"room_id": roomID,
			})
		}
		c.logger.Info().Str("conn_id", connID).Str("room_id", roomID).Msg("viewer joined room")

	case model.RoleBroadcaster:
		// A plain room join never preempts an active broadcaster.
		if c.liveID != "" && c.liveID != connID {
			c.metrics.ClaimRejected("join")
			c.send(connID, map[string]interface{}{
				"type":           model.EventStreamRejected,
				"broadcaster_id": c.liveID,
			})
			c.logger.Info().Str("conn_id", connID).Str("holder", c.liveID).Msg("broadcaster join rejected")
			return
		}

		c.liveID = connID
		r.broadcaster = connID
		conn.role = model.RoleBroadcaster
		c.metrics.ClaimAccepted("join")
		for viewerID := range r.viewers {
			c.send(viewerID, map[string]interface{}{
				"type":           model.EventAdminLive,
				"broadcaster_id": connID,
				"room_id":        roomID,
			})
		}
		c.logger.Info().Str("conn_id", connID).Str("room_id", roomID).Msg("broadcaster joined room")

	default:
		c.logger.Warn().Str("conn_id", connID).Str("role", role).Msg("join with unknown role")
	}
}

// leaveLocked removes a connection from whichever room and role it held and
// sends the targeted peer-disconnected notifications. Callers hold the
// coordinator lock.
func (c *Coordinator) leaveLocked(conn *connection) {
	if conn.roomID == "" {
		return
	}

	r, ok := c.rooms[conn.roomID]
	if !ok {
		conn.roomID = ""
		conn.role = ""
		return
	}

	delete(r.members, conn.id)
	delete(r.viewers, conn.id)

	event := map[string]interface{}{
		"type":    model.EventUserDisconnected,
		"user_id": conn.id,
		"room_id": r.id,
	}

	switch {
	case r.broadcaster == conn.id:
		r.broadcaster = ""
		for viewerID := range r.viewers {
			c.send(viewerID, event)
		}
	case conn.role == model.RoleViewer && r.broadcaster != "":
		c.send(r.broadcaster, event)
	}

	if len(r.members) == 0 {
		delete(c.rooms, r.id)
	}

	conn.roomID = ""
	conn.role = ""
}

// roomLocked returns the room, creating it on first use. Callers hold the
// coordinator lock.
func (c *Coordinator) roomLocked(roomID string) *room {
	r, ok := c.rooms[roomID]
	if !ok {
		r = &room{
			id:      roomID,
			viewers: make(map[string]struct{}),
			members: make(map[string]struct{}),
		}
		c.rooms[roomID] = r
	}
	return r
}
