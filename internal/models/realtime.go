package models

// ChatMessage is the outbound envelope written to a client. It carries either a
// system event (Type is an EventKind) or a relayed payload (Type is a
// PayloadKind). It deliberately has no sender field.
type ChatMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// EventMessage wraps a notification event.
func EventMessage(kind EventKind) ChatMessage {
	return ChatMessage{Type: string(kind)}
}

// PayloadMessage wraps a relayed payload.
func PayloadMessage(p Payload) ChatMessage {
	return ChatMessage{
		Type:    string(p.Kind),
		Content: p.Content,
		Caption: p.Caption,
	}
}

// Event reports whether the message is a system event and which one.
func (m ChatMessage) Event() (EventKind, bool) {
	kind := EventKind(m.Type)
	return kind, kind.Valid()
}

// Payload converts the message back into a payload. Only meaningful when
// Event() reports false.
func (m ChatMessage) Payload() Payload {
	return Payload{
		Kind:    PayloadKind(m.Type),
		Content: m.Content,
		Caption: m.Caption,
	}
}

// Command is a session command issued by a user.
type Command string

const (
	CommandJoin   Command = "join"
	CommandLeave  Command = "leave"
	CommandRotate Command = "rotate"
	// CommandDisconnect is emitted by a transport when the user's connection
	// goes away. It is never typed by a user.
	CommandDisconnect Command = "disconnect"
)

// ParseCommand maps a user supplied command name onto a Command.
func ParseCommand(name string) (Command, bool) {
	switch Command(name) {
	case CommandJoin, CommandLeave, CommandRotate:
		return Command(name), true
	}
	return "", false
}

// InboundEvent is what a transport hands to the hub: either a command or a
// payload from one user.
type InboundEvent struct {
	UserID  UserID
	Command Command
	Payload Payload
}

// IsCommand reports whether the event carries a command rather than a payload.
func (e InboundEvent) IsCommand() bool {
	return e.Command != ""
}
