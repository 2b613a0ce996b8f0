package chathub

import "errors"

var (
	// ErrAlreadyActive is returned when a user who is waiting or paired asks
	// to be queued again.
	ErrAlreadyActive = errors.New("user is already waiting or paired")
	// ErrInvalidState signals a registry invariant violation. It is a
	// programming error, never a user-facing condition.
	ErrInvalidState = errors.New("registry invariant violation")
	// ErrInvalidCommand is returned when a command is not valid in the
	// user's current state.
	ErrInvalidCommand = errors.New("command not valid in current state")
	// ErrNotConnected is returned for relay or leave without an active pairing.
	ErrNotConnected = errors.New("user is not connected")
	// ErrUnsupportedType is returned for payload kinds that cannot be relayed.
	ErrUnsupportedType = errors.New("unsupported payload type")
	// ErrDeliveryFailure is returned when the transport could not accept an
	// outbound message. It never affects registry state.
	ErrDeliveryFailure = errors.New("delivery failure")
)
