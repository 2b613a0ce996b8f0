package chathub

import (
	"context"
	"strangerchat/backend/internal/models"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 10
)

// FrameTypeCommand marks an inbound frame whose content is a command name.
const FrameTypeCommand = "command"

// WebSocketClient implements Client for browser connections. Inbound frames
// are JSON objects {"type", "content", "caption"}: type "command" with content
// join/leave/rotate, or a payload kind.
type WebSocketClient struct {
	UserID models.UserID
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.ChatMessage

	ctx       context.Context
	closeOnce sync.Once
}

// NewWebSocketClient creates a client; ctx bounds event submission to the hub.
func NewWebSocketClient(ctx context.Context, hub *ManagerService, id models.UserID, conn *websocket.Conn, bufferSize int) *WebSocketClient {
	return &WebSocketClient{
		UserID: id,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.ChatMessage, bufferSize),
		ctx:    ctx,
	}
}

func (c *WebSocketClient) GetUserID() models.UserID                  { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ChatMessage { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops writePump and, through the
// closed connection, readPump.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// ParseFrame turns an inbound frame into an event. It reports false for
// command frames naming an unknown command.
func ParseFrame(user models.UserID, frame models.ChatMessage) (models.InboundEvent, bool) {
	if frame.Type == FrameTypeCommand {
		cmd, ok := models.ParseCommand(frame.Content)
		if !ok {
			return models.InboundEvent{}, false
		}
		return models.InboundEvent{UserID: user, Command: cmd}, true
	}
	p := frame.Payload()
	if p.Kind != models.PayloadPhoto && p.Kind != models.PayloadVoice {
		p.Caption = ""
	}
	return models.InboundEvent{UserID: user, Payload: p}, true
}

func (c *WebSocketClient) readPump() {
	defer func() {
		// Only the current client of a user ends that user's session; a
		// connection replaced by a reconnect leaves it alone.
		if c.Hub.Unregister(c) {
			ev := models.InboundEvent{UserID: c.UserID, Command: models.CommandDisconnect}
			if err := c.Hub.Submit(c.ctx, ev); err != nil {
				log.Debug().Err(err).Str("user_id", c.UserID.String()).Msg("Disconnect not submitted")
			}
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame models.ChatMessage
		if err := c.Conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID.String()).Msg("WebSocket read failed")
			}
			return
		}

		ev, ok := ParseFrame(c.UserID, frame)
		if !ok {
			log.Debug().Str("user_id", c.UserID.String()).Msg("Unknown command frame skipped")
			continue
		}
		if err := c.Hub.Submit(c.ctx, ev); err != nil {
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				log.Warn().Err(err).Str("user_id", c.UserID.String()).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
