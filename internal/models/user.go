package models

import (
	"strconv"
	"strings"
)

// UserID identifies a transport-level user. Values are namespaced by the
// transport that owns them so users of different transports never collide.
type UserID string

const (
	telegramPrefix  = "tg:"
	websocketPrefix = "ws:"
)

// TelegramUserID builds the UserID for a Telegram chat.
func TelegramUserID(chatID int64) UserID {
	return UserID(telegramPrefix + strconv.FormatInt(chatID, 10))
}

// WebSocketUserID builds the UserID for an anonymous WebSocket identity.
func WebSocketUserID(anonID string) UserID {
	return UserID(websocketPrefix + anonID)
}

// TelegramChatID extracts the Telegram chat ID, if the user belongs to the
// Telegram transport.
func (u UserID) TelegramChatID() (int64, bool) {
	raw, ok := strings.CutPrefix(string(u), telegramPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (u UserID) String() string { return string(u) }
