package chathub

import (
	"errors"
	"fmt"
	"strangerchat/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// State is a user's position in the session state machine.
type State int

const (
	StateIdle State = iota
	StateWaiting
	StatePaired
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePaired:
		return "paired"
	default:
		return "idle"
	}
}

// SessionController implements the per-user commands on top of the registry
// and the matcher, and tells the gateway which events to show.
type SessionController struct {
	Registry *PartnerRegistry
	Matcher  *MatcherService
	Gateway  Gateway
	Usage    UsageRecorder
}

// NewSessionController wires a controller. A nil recorder disables counting.
func NewSessionController(r *PartnerRegistry, m *MatcherService, g Gateway, usage UsageRecorder) *SessionController {
	if usage == nil {
		usage = noopRecorder{}
	}
	return &SessionController{Registry: r, Matcher: m, Gateway: g, Usage: usage}
}

// State derives the user's state from the registry.
func (s *SessionController) State(u models.UserID) State {
	if _, ok := s.Registry.PartnerOf(u); ok {
		return StatePaired
	}
	if s.Registry.IsWaiting(u) {
		return StateWaiting
	}
	return StateIdle
}

// Join asks for a partner. Idle users are paired with the oldest waiter or
// queued; waiting or paired users are told why the command was refused.
func (s *SessionController) Join(u models.UserID) (State, error) {
	switch s.State(u) {
	case StateWaiting:
		s.notify(u, models.EventAlreadyWaiting)
		return StateWaiting, fmt.Errorf("join: already queued: %w", ErrInvalidCommand)
	case StatePaired:
		s.notify(u, models.EventAlreadyChatting)
		return StatePaired, fmt.Errorf("join: already chatting: %w", ErrInvalidCommand)
	}

	result, err := s.Matcher.RequestMatch(u)
	if err != nil {
		if errors.Is(err, ErrAlreadyActive) {
			// Lost a race with another request for the same user.
			return s.State(u), fmt.Errorf("join: %w", ErrInvalidCommand)
		}
		return StateIdle, fmt.Errorf("join: %w", err)
	}

	if result.Paired {
		s.notify(u, models.EventConnected)
		s.notify(result.Partner, models.EventConnected)
		return StatePaired, nil
	}
	s.notify(u, models.EventWaiting)
	return StateWaiting, nil
}

// Leave ends the user's wait or chat. Idle users get NotConnected.
func (s *SessionController) Leave(u models.UserID) (State, error) {
	return s.leave(u, true)
}

// Disconnect applies Leave for a user whose transport connection is gone.
// The user is not notified; a paired partner still is.
func (s *SessionController) Disconnect(u models.UserID) {
	_, _ = s.leave(u, false)
}

func (s *SessionController) leave(u models.UserID, notifySelf bool) (State, error) {
	if s.Registry.RemoveFromQueue(u) {
		if notifySelf {
			s.notify(u, models.EventRemoved)
		}
		return StateIdle, nil
	}

	if partner, ok := s.Registry.Unpair(u); ok {
		s.notify(partner, models.EventPartnerDisconnected)
		if notifySelf {
			s.notify(u, models.EventChatEnded)
		}
		return StateIdle, nil
	}

	if notifySelf {
		s.notify(u, models.EventNotConnected)
	}
	return StateIdle, fmt.Errorf("leave: %w", ErrNotConnected)
}

// Rotate ends the current chat or wait and immediately looks for a new
// partner. It is two registry steps; the hub runs both as one unit of work
// for the user so no other event of the same user lands in between.
func (s *SessionController) Rotate(u models.UserID) (State, error) {
	_, err := s.leave(u, true)
	if err != nil && !errors.Is(err, ErrNotConnected) {
		return s.State(u), fmt.Errorf("rotate: %w", err)
	}
	if err == nil {
		s.Usage.RecordRotation()
	}
	state, err := s.Join(u)
	if err != nil {
		return state, fmt.Errorf("rotate: %w", err)
	}
	return state, nil
}

func (s *SessionController) notify(u models.UserID, event models.EventKind) {
	if err := s.Gateway.Notify(u, event); err != nil {
		log.Warn().Err(err).Str("user_id", u.String()).Str("event", string(event)).Msg("Notification not delivered")
	}
}
