package chathub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame models.ChatMessage
		want  models.InboundEvent
		ok    bool
	}{
		{
			name:  "join command",
			frame: models.ChatMessage{Type: "command", Content: "join"},
			want:  models.InboundEvent{UserID: "ws:1", Command: models.CommandJoin},
			ok:    true,
		},
		{
			name:  "disconnect cannot be typed",
			frame: models.ChatMessage{Type: "command", Content: "disconnect"},
			ok:    false,
		},
		{
			name:  "text drops caption",
			frame: models.ChatMessage{Type: "text", Content: "hi", Caption: "x"},
			want:  models.InboundEvent{UserID: "ws:1", Payload: models.TextPayload("hi")},
			ok:    true,
		},
		{
			name:  "photo keeps caption",
			frame: models.ChatMessage{Type: "photo", Content: "ref", Caption: "x"},
			want:  models.InboundEvent{UserID: "ws:1", Payload: models.PhotoPayload("ref", "x")},
			ok:    true,
		},
		{
			name:  "unknown kind is passed through for rejection",
			frame: models.ChatMessage{Type: "location", Content: "1,2"},
			want:  models.InboundEvent{UserID: "ws:1", Payload: models.Payload{Kind: "location", Content: "1,2"}},
			ok:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chathub.ParseFrame("ws:1", tt.frame)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// TestWebSocketClient_EndToEnd connects two browser clients through a real
// WebSocket server and relays a message between them.
func TestWebSocketClient_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := chathub.NewManagerService(nil, nil)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := models.WebSocketUserID(r.URL.Query().Get("id"))
		client := chathub.NewWebSocketClient(ctx, hub, id, conn, 16)
		hub.Register(client)
		client.Run()
	}))
	defer srv.Close()

	dial := func(id string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?id=" + id
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}
	read := func(conn *websocket.Conn) models.ChatMessage {
		var msg models.ChatMessage
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	alice := dial("alice")
	defer alice.Close()
	require.NoError(t, alice.WriteJSON(models.ChatMessage{Type: "command", Content: "join"}))
	assert.Equal(t, "system_waiting", read(alice).Type)

	bob := dial("bob")
	defer bob.Close()
	require.NoError(t, bob.WriteJSON(models.ChatMessage{Type: "command", Content: "join"}))
	assert.Equal(t, "system_connected", read(alice).Type)
	assert.Equal(t, "system_connected", read(bob).Type)

	require.NoError(t, bob.WriteJSON(models.ChatMessage{Type: "text", Content: "hi"}))
	assert.Equal(t, models.ChatMessage{Type: "text", Content: "hi"}, read(alice))

	// Closing bob's socket ends the chat for alice.
	require.NoError(t, bob.Close())
	assert.Equal(t, "system_partner_disconnected", read(alice).Type)
}
