package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hongnhan/livesignal/internal/coordinator"
)

// HTTPHandler serves the read-only REST snapshots of coordinator state.
type HTTPHandler struct {
	coordinator *coordinator.Coordinator
	startedAt   time.Time
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(coord *coordinator.Coordinator) *HTTPHandler {
	return &HTTPHandler{
		coordinator: coord,
		startedAt:   time.Now(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *HTTPHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/stream/status", h.handleStreamStatus).Methods("GET")
	r.HandleFunc("/api/chat/messages", h.handleChatMessages).Methods("GET")
	r.HandleFunc("/api/chat/clear", h.handleChatClear).Methods("POST")
}

// handleStreamStatus mirrors the coordinator's stream state.
func (h *HTTPHandler) handleStreamStatus(w http.ResponseWriter, r *http.Request) {
	status, broadcasterID := h.coordinator.Status()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         status,
		"broadcaster_id": broadcasterID,
		"viewers":        h.coordinator.UserCount(),
		"uptime":         time.Since(h.startedAt).Seconds(),
	})
}

// handleChatMessages returns the recent chat window.
func (h *HTTPHandler) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.coordinator.Messages())
}

// handleChatClear empties the chat log and notifies every connection.
func (h *HTTPHandler) handleChatClear(w http.ResponseWriter, r *http.Request) {
	h.coordinator.ClearChat()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}
