package handler

import (
	"net/http"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin; clients authenticate with a token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the anonymous token and upgrades the
// connection into a hub client.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	anonID, err := h.validateAndGetAnonID(tokenString)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket token rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the error response.
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := chathub.NewWebSocketClient(h.ctx, h.Hub, models.WebSocketUserID(anonID), conn, h.BufferSize)
	h.Hub.Register(client)
	client.Run()
}
