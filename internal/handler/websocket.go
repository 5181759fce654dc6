package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hongnhan/livesignal/internal/config"
	"github.com/hongnhan/livesignal/internal/coordinator"
	"github.com/hongnhan/livesignal/internal/hub"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	coordinator *coordinator.Coordinator
	hub         *hub.Hub
	logger      zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cfg *config.Config, h *hub.Hub, coord *coordinator.Coordinator, logger zerolog.Logger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range cfg.HTTP.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}

	return &WebSocketHandler{
		coordinator: coord,
		hub:         h,
		logger:      logger,
		upgrader:    upgrader,
	}
}

// HandleWebSocket upgrades the HTTP connection, assigns the connection its
// identity and registers it with the coordinator so it receives the initial
// snapshot.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	connID := uuid.NewString()
	h.hub.RegisterClient(conn, connID)
	h.coordinator.Register(connID)
}
