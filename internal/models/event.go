package models

// EventKind is a notification the core asks a transport to show a user.
type EventKind string

const (
	EventConnected           EventKind = "system_connected"
	EventWaiting             EventKind = "system_waiting"
	EventRemoved             EventKind = "system_removed"
	EventPartnerDisconnected EventKind = "system_partner_disconnected"
	EventChatEnded           EventKind = "system_chat_ended"
	EventNotConnected        EventKind = "system_not_connected"
	EventAlreadyWaiting      EventKind = "system_already_waiting"
	EventAlreadyChatting     EventKind = "system_already_chatting"
	EventUnsupportedPayload  EventKind = "system_unsupported_payload"
	EventDeliveryFailed      EventKind = "system_delivery_failed"
	EventRateLimited         EventKind = "system_rate_limited"
)

var eventKinds = map[EventKind]struct{}{
	EventConnected:           {},
	EventWaiting:             {},
	EventRemoved:             {},
	EventPartnerDisconnected: {},
	EventChatEnded:           {},
	EventNotConnected:        {},
	EventAlreadyWaiting:      {},
	EventAlreadyChatting:     {},
	EventUnsupportedPayload:  {},
	EventDeliveryFailed:      {},
	EventRateLimited:         {},
}

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	_, ok := eventKinds[k]
	return ok
}

// LocalizationKey is the translation key used to render the event.
func (k EventKind) LocalizationKey() string {
	return string(k)
}
