package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/server/websocket"
	"github.com/tixora/payments/pkg/config"
)

// WebSocketHandler upgrades status-stream subscriptions.
type WebSocketHandler struct {
	wsManager interfaces.WebSocketManager
	upgrader  gws.Upgrader
}

func NewWebSocketHandler(wsManager interfaces.WebSocketManager, cfg config.WebSocketConfig) *WebSocketHandler {
	readBuffer := cfg.ReadBufferSize
	if readBuffer == 0 {
		readBuffer = 1024
	}
	writeBuffer := cfg.WriteBufferSize
	if writeBuffer == 0 {
		writeBuffer = 1024
	}

	upgrader := gws.Upgrader{
		ReadBufferSize:  readBuffer,
		WriteBufferSize: writeBuffer,
	}
	if !cfg.CheckOrigin {
		// A nil CheckOrigin enforces same-origin; opt out unless configured.
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader:  upgrader,
	}
}

func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Failed to upgrade to WebSocket",
		})
		return
	}

	client := websocket.NewClient(conn)

	if err := h.wsManager.AddClient(client); err != nil {
		log.Error().Err(err).Str("client_id", client.GetID()).Msg("Failed to add status stream client")
		conn.Close()
		return
	}

	log.Info().Str("client_id", client.GetID()).Msg("Status stream client connected")

	defer func() {
		h.wsManager.RemoveClient(client.GetID())
		client.Close()
		log.Info().Str("client_id", client.GetID()).Msg("Status stream client disconnected")
	}()

	if wsClient, ok := client.(*websocket.Client); ok {
		wsClient.HandleConnection()
	}
}
