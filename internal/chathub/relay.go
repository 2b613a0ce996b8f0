package chathub

import (
	"fmt"
	"strangerchat/backend/internal/models"
)

// RelayDispatcher forwards payloads to the sender's current partner.
type RelayDispatcher struct {
	Registry *PartnerRegistry
	Gateway  Gateway
	Usage    UsageRecorder
}

// NewRelayDispatcher wires a dispatcher. A nil recorder disables counting.
func NewRelayDispatcher(r *PartnerRegistry, g Gateway, usage UsageRecorder) *RelayDispatcher {
	if usage == nil {
		usage = noopRecorder{}
	}
	return &RelayDispatcher{Registry: r, Gateway: g, Usage: usage}
}

// Relay forwards payload unchanged to the sender's partner. A nil error means
// the payload was handed to the transport. ErrNotConnected and
// ErrUnsupportedType mean nothing was forwarded; the caller notifies the
// sender. ErrDeliveryFailure means the transport refused the payload; the
// pairing is left intact either way.
func (d *RelayDispatcher) Relay(sender models.UserID, payload models.Payload) error {
	partner, ok := d.Registry.PartnerOf(sender)
	if !ok {
		return ErrNotConnected
	}
	if !payload.Supported() {
		return fmt.Errorf("relay %q: %w", payload.Kind, ErrUnsupportedType)
	}

	// Only the payload crosses over: the sender's ID stays on this side.
	if err := d.Gateway.Forward(partner, payload); err != nil {
		return fmt.Errorf("relay to partner: %w: %w", ErrDeliveryFailure, err)
	}
	d.Usage.RecordMessage()
	return nil
}
