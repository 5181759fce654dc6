package coordinator

import (
	"encoding/json"

	"github.com/hongnhan/livesignal/internal/model"
)

// HandleMessage decodes one inbound envelope and routes it to the right
// operation. A payload that fails to parse is logged and discarded; the
// connection itself is never terminated for a bad message.
func (c *Coordinator) HandleMessage(connID string, data []byte) {
	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.metrics.InvalidMessage()
		c.logger.Warn().Err(err).Str("conn_id", connID).Msg("malformed message discarded")
		return
	}

	switch env.Type {
	case model.EventJoinRoom:
		c.JoinRoom(connID, env.RoomID, env.Role)

	case model.EventGoingLive:
		c.GoingLive(connID, env.RoomID)

	case model.EventOffer, model.EventAnswer, model.EventICECandidate:
		c.Relay(env.Type, connID, env.TargetID, env.RoomID, env.Payload)

	case model.EventRequestStream:
		c.RequestStream(connID, env.RoomID)

	case model.EventStreamStatus:
		c.SetStreamStatus(connID, env.Status)

	case model.EventChatMessage:
		c.PostChat(connID, env.Username, env.Message, env.Sender)

	case model.EventSendHeart:
		c.PostHeart(env.Username)

	case model.EventClearChat:
		c.ClearChat()

	default:
		c.metrics.InvalidMessage()
		c.logger.Debug().Str("conn_id", connID).Str("type", env.Type).Msg("unknown message type")
	}
}

// HandleDisconnect runs the full disconnect cascade for a closed transport.
func (c *Coordinator) HandleDisconnect(connID string) {
	c.Deregister(connID)
}
