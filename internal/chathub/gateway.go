package chathub

import "strangerchat/backend/internal/models"

// Gateway delivers core output to users. Implementations must not block on
// transport I/O: delivery is fire-and-forget from the registry's point of
// view, and a returned error never rolls back registry state.
type Gateway interface {
	// Notify asks the transport to show the user a system event.
	Notify(user models.UserID, event models.EventKind) error
	// Forward relays a payload to the recipient. Implementations must not
	// attach anything that identifies the sender.
	Forward(recipient models.UserID, payload models.Payload) error
}
