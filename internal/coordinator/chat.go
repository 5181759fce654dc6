package coordinator

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hongnhan/livesignal/internal/model"
)

const defaultUsername = "Guest"

// PostChat appends a chat message to the bounded log and fans the full
// message out to every connection. The log keeps the most recent entries
// only, oldest evicted first.
func (c *Coordinator) PostChat(connID, username, message, sender string) model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if username == "" {
		username = defaultUsername
	}
	if sender == "" {
		sender = "guest"
	}

	msg := model.ChatMessage{
		ID:        ulid.Make().String(),
		Username:  username,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Sender:    sender,
	}

	c.chat = append(c.chat, msg)
	if len(c.chat) > chatWindow {
		c.chat = c.chat[len(c.chat)-chatWindow:]
	}

	c.metrics.ChatMessage()
	c.broadcast(map[string]interface{}{
		"type":        model.EventChatMessage,
		"id":          msg.ID,
		"username":    msg.Username,
		"message":     msg.Message,
		"timestamp":   msg.Timestamp,
		"sender_type": msg.Sender,
	})
	return msg
}

// PostHeart fans out an ephemeral reaction to every connection. Hearts are
// not persisted.
func (c *Coordinator) PostHeart(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if username == "" {
		username = defaultUsername
	}

	c.metrics.Heart()
	c.broadcast(map[string]interface{}{
		"type":      model.EventHeartAnimation,
		"username":  username,
		"timestamp": time.Now().UTC(),
	})
}

// ClearChat empties the chat log and tells every connection it was cleared.
func (c *Coordinator) ClearChat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chat = nil
	c.broadcast(map[string]interface{}{
		"type": model.EventChatCleared,
	})
	c.logger.Info().Msg("chat cleared")
}
