// Package handler holds the HTTP surface: anonymous identities, the WebSocket
// endpoint and read-only health and usage views.
package handler

import (
	"context"
	"strangerchat/backend/internal/analysis"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/storage"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler holds what the HTTP routes need.
type Handler struct {
	Hub        *chathub.ManagerService
	Usage      *analysis.Counter
	Storage    storage.Storage // nil when no database is configured
	JWTSecret  []byte
	BufferSize int

	// ctx outlives single requests and bounds WebSocket clients.
	ctx context.Context
}

func NewHandler(ctx context.Context, hub *chathub.ManagerService, usage *analysis.Counter, store storage.Storage, jwtSecret string, bufferSize int) *Handler {
	return &Handler{
		Hub:        hub,
		Usage:      usage,
		Storage:    store,
		JWTSecret:  []byte(jwtSecret),
		BufferSize: bufferSize,
		ctx:        ctx,
	}
}

// RegisterRoutes mounts every route on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/anonid", h.GetAnonID)
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/healthz", h.Health)
	r.GET("/stats", h.Stats)
}

// RequestLogger logs each request through zerolog. Only the route pattern is
// logged; the query string may carry a token.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}
