package chathub

import "strangerchat/backend/internal/models"

// Client is the interface for any type of connection (e.g., WebSocket, Telegram).
// It abstracts the underlying communication mechanism, allowing the hub to match
// and relay between users of different transports uniformly.
type Client interface {
	// GetUserID returns the identifier of the user behind the connection.
	GetUserID() models.UserID

	// GetSendChannel returns the buffered channel the hub writes outbound
	// messages to. The client's write pump drains it.
	GetSendChannel() chan<- models.ChatMessage

	// Run starts the client's pumps.
	Run()
	// Close shuts the client down. It must be safe to call more than once.
	Close()
}
