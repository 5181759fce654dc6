package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongnhan/livesignal/internal/model"
)

func TestDispatchRoutesEnvelopes(t *testing.T) {
	c, sender := newTestCoordinator(t)
	c.Register("admin")
	c.Register("v1")

	c.HandleMessage("admin", []byte(`{"type":"join-room","room_id":"r1","role":"broadcaster"}`))
	c.HandleMessage("v1", []byte(`{"type":"join-room","room_id":"r1","role":"viewer"}`))
	c.HandleMessage("admin", []byte(`{"type":"admin-going-live","room_id":"r1"}`))

	status, live := c.Status()
	assert.Equal(t, model.StatusLive, status)
	assert.Equal(t, "admin", live)
	require.Len(t, sender.eventsOfType("v1", model.EventGoingLive), 1)

	c.HandleMessage("admin", []byte(`{"type":"offer","room_id":"r1","target_id":"v1","payload":{"sdp":"v=0"}}`))
	require.Len(t, sender.eventsOfType("v1", model.EventOffer), 1)

	c.HandleMessage("v1", []byte(`{"type":"chat_message","username":"ann","message":"hi","sender_type":"guest"}`))
	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ann", msgs[0].Username)

	c.HandleMessage("v1", []byte(`{"type":"send_heart","username":"ann"}`))
	assert.Len(t, sender.broadcastsOfType(model.EventHeartAnimation), 1)

	c.HandleMessage("admin", []byte(`{"type":"clear_chat"}`))
	assert.Empty(t, c.Messages())

	c.HandleMessage("admin", []byte(`{"type":"stream_status","status":"offline"}`))
	status, live = c.Status()
	assert.Equal(t, model.StatusOffline, status)
	assert.Empty(t, live)
}

func TestDispatchDiscardsMalformedMessages(t *testing.T) {
	c, sender := newTestCoordinator(t)
	c.Register("a")

	c.HandleMessage("a", []byte(`{not json`))
	c.HandleMessage("a", []byte(`{"type":"no-such-event"}`))

	// The connection survives a bad message.
	assert.Empty(t, sender.terminated)
	assert.Equal(t, 1, c.UserCount())
}

func TestDispatchDisconnect(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.Register("a")

	c.HandleDisconnect("a")
	assert.Equal(t, 0, c.UserCount())
}
