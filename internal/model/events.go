package model

import (
	"encoding/json"
	"time"
)

// StreamStatus is the process-wide live/offline state.
type StreamStatus string

const (
	StatusOffline StreamStatus = "offline"
	StatusLive    StreamStatus = "live"
)

// Participant roles inside a room.
const (
	RoleBroadcaster = "broadcaster"
	RoleViewer      = "viewer"
)

// Inbound event types
const (
	EventJoinRoom       = "join-room"
	EventGoingLive      = "admin-going-live"
	EventOffer          = "offer"
	EventAnswer         = "answer"
	EventICECandidate   = "ice-candidate"
	EventRequestStream  = "request-webrtc-stream"
	EventStreamStatus   = "stream_status"
	EventChatMessage    = "chat_message"
	EventSendHeart      = "send_heart"
	EventClearChat      = "clear_chat"
)

// Outbound event types
const (
	EventChatHistory      = "chat_history"
	EventUserCount        = "user_count"
	EventHeartAnimation   = "heart_animation"
	EventChatCleared      = "chat_cleared"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventAdminReplaced    = "admin-replaced"
	EventAdminLive        = "admin-live"
	EventStreamRejected   = "stream-rejected"
	EventNoLiveAdmin      = "no-live-admin"
	EventViewerRequest    = "webrtc-viewer-request"
	EventError            = "error"
)

// Envelope is the wire format for every inbound WebSocket message.
// Only the fields relevant to the given type are populated.
type Envelope struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"room_id,omitempty"`
	Role     string          `json:"role,omitempty"`
	TargetID string          `json:"target_id,omitempty"`
	Status   StreamStatus    `json:"status,omitempty"`
	Username string          `json:"username,omitempty"`
	Message  string          `json:"message,omitempty"`
	Sender   string          `json:"sender_type,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ChatMessage is one entry in the bounded chat log.
type ChatMessage struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender_type"`
}

// SignalMessage is a relayed WebRTC negotiation message. The payload is
// opaque to the coordinator.
type SignalMessage struct {
	Type     string          `json:"type"`
	SenderID string          `json:"sender_id"`
	RoomID   string          `json:"room_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// StatusEvent is the stream_status notification sent to every connection.
type StatusEvent struct {
	Type          string       `json:"type"`
	Status        StreamStatus `json:"status"`
	BroadcasterID string       `json:"broadcaster_id,omitempty"`
	Reason        string       `json:"reason,omitempty"`
}
