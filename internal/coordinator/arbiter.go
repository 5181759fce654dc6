package coordinator

import (
	"context"

	"github.com/hongnhan/livesignal/internal/model"
)

// GoingLive handles an explicit "start broadcasting" claim. An explicit
// claim always wins: a different incumbent is told it was replaced and its
// transport is forcibly terminated before the claim is accepted.
func (c *Coordinator) GoingLive(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.conns[connID]
	if !ok {
		return
	}

	if conn.roomID == "" {
		r := c.roomLocked(roomID)
		r.members[connID] = struct{}{}
		conn.roomID = roomID
	}
	r := c.roomLocked(conn.roomID)

	if c.liveID != "" && c.liveID != connID {
		incumbent := c.liveID
		c.send(incumbent, map[string]interface{}{
			"type":         model.EventAdminReplaced,
			"new_admin_id": connID,
		})
		c.sender.Terminate(incumbent)
		c.metrics.BroadcasterEvicted()
		c.logger.Warn().Str("evicted", incumbent).Str("conn_id", connID).Msg("incumbent broadcaster replaced")
	}

	wasLive := c.status == model.StatusLive
	c.liveID = connID
	// A claimant that joined as a viewer stops being one.
	delete(r.viewers, connID)
	r.broadcaster = connID
	conn.role = model.RoleBroadcaster
	c.status = model.StatusLive
	c.metrics.ClaimAccepted("going-live")
	c.metrics.StreamLive(true)

	for viewerID := range r.viewers {
		c.send(viewerID, map[string]interface{}{
			"type":           model.EventGoingLive,
			"broadcaster_id": connID,
			"room_id":        r.id,
		})
	}
	c.broadcast(c.statusEventLocked(""))
	c.logger.Info().Str("conn_id", connID).Str("room_id", r.id).Msg("broadcaster live")

	if !wasLive {
		c.startTranscoder(connID)
	}
}

// SetStreamStatus handles a generic state-sync message. A live claim made
// this way never preempts an active broadcaster; it is rejected and the
// claimant is told who holds the slot. Offline transitions from the holder
// (or when nobody holds the slot) release it.
func (c *Coordinator) SetStreamStatus(connID string, status model.StreamStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.conns[connID]
	if !ok {
		return
	}

	switch status {
	case model.StatusLive:
		if c.liveID != "" && c.liveID != connID {
			c.metrics.ClaimRejected("status-sync")
			c.send(connID, map[string]interface{}{
				"type":           model.EventStreamRejected,
				"broadcaster_id": c.liveID,
			})
			c.logger.Info().Str("conn_id", connID).Str("holder", c.liveID).Msg("status-sync claim rejected")
			return
		}

		wasLive := c.status == model.StatusLive
		c.liveID = connID
		c.status = model.StatusLive
		c.metrics.ClaimAccepted("status-sync")
		c.metrics.StreamLive(true)
		if conn.roomID != "" {
			r := c.roomLocked(conn.roomID)
			delete(r.viewers, connID)
			r.broadcaster = connID
			conn.role = model.RoleBroadcaster
			for viewerID := range r.viewers {
				c.send(viewerID, map[string]interface{}{
					"type":           model.EventAdminLive,
					"broadcaster_id": connID,
					"room_id":        r.id,
				})
			}
		}
		c.broadcast(c.statusEventLocked(""))
		c.logger.Info().Str("conn_id", connID).Msg("stream live via status sync")

		if !wasLive {
			c.startTranscoder(connID)
		}

	case model.StatusOffline:
		if c.liveID != "" && c.liveID != connID {
			// Only the holder may take the stream offline. Re-announce the
			// current state so the claimant resynchronises.
			c.broadcast(c.statusEventLocked(""))
			return
		}
		c.releaseLocked("broadcaster ended the stream")

	default:
		c.logger.Warn().Str("conn_id", connID).Str("status", string(status)).Msg("unknown stream status discarded")
	}
}

// releaseLocked clears the live-broadcaster slot, marks the stream offline
// and broadcasts the transition to every connection. Callers hold the
// coordinator lock.
func (c *Coordinator) releaseLocked(reason string) {
	wasLive := c.status == model.StatusLive
	c.liveID = ""
	c.status = model.StatusOffline
	c.metrics.StreamLive(false)
	c.broadcast(c.statusEventLocked(reason))
	c.logger.Info().Str("reason", reason).Msg("stream offline")

	if wasLive {
		c.stopTranscoder()
	}
}

// startTranscoder notifies the transcoding collaborator of the live
// transition. It runs in the background so the coordinator never blocks on
// external process control; failures are reported to the acting connection
// only.
func (c *Coordinator) startTranscoder(actingID string) {
	go func() {
		if err := c.transcoder.Start(context.Background()); err != nil {
			c.logger.Error().Err(err).Msg("transcoder start failed")
			c.send(actingID, map[string]interface{}{
				"type":    model.EventError,
				"message": "transcoder unavailable: " + err.Error(),
			})
		}
	}()
}

// stopTranscoder notifies the transcoding collaborator of the offline
// transition.
func (c *Coordinator) stopTranscoder() {
	go func() {
		if err := c.transcoder.Stop(); err != nil {
			c.logger.Error().Err(err).Msg("transcoder stop failed")
		}
	}()
}
