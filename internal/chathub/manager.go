package chathub

import (
	"context"
	"errors"
	"fmt"
	"strangerchat/backend/internal/models"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultLimiterTimeout = 250 * time.Millisecond

// RelayLimiter decides whether a user may relay another payload right now.
type RelayLimiter interface {
	Allow(ctx context.Context, user models.UserID) (bool, error)
}

// HubStats is a point-in-time view of the hub.
type HubStats struct {
	Clients int `json:"clients"`
	RegistryStats
}

// ManagerService is the hub: it owns the connected clients, implements the
// Gateway on top of their send channels, and runs the single event loop that
// applies inbound events to the session controller and the relay.
type ManagerService struct {
	mu      sync.RWMutex
	clients map[models.UserID]Client

	IncomingCh chan models.InboundEvent

	Registry *PartnerRegistry
	Matcher  *MatcherService
	Sessions *SessionController
	Relay    *RelayDispatcher

	Limiter        RelayLimiter
	LimiterTimeout time.Duration
}

// NewManagerService builds a hub with an empty registry. usage and limiter
// may be nil.
func NewManagerService(usage UsageRecorder, limiter RelayLimiter) *ManagerService {
	registry := NewPartnerRegistry()
	m := &ManagerService{
		clients:        make(map[models.UserID]Client),
		IncomingCh:     make(chan models.InboundEvent, 256),
		Registry:       registry,
		Limiter:        limiter,
		LimiterTimeout: defaultLimiterTimeout,
	}
	m.Matcher = NewMatcherService(registry, usage)
	m.Sessions = NewSessionController(registry, m.Matcher, m, usage)
	m.Relay = NewRelayDispatcher(registry, m, usage)
	return m
}

// Register adds a client. A previous client of the same user is closed and
// replaced.
func (m *ManagerService) Register(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := c.GetUserID()
	if old, ok := m.clients[id]; ok && old != c {
		old.Close()
	}
	m.clients[id] = c
	log.Debug().Str("user_id", id.String()).Int("count", len(m.clients)).Msg("Client registered")
}

// Unregister removes c and closes it. It reports false when c is not the
// user's current client (for example it was replaced by a reconnect).
func (m *ManagerService) Unregister(c Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := c.GetUserID()
	if current, ok := m.clients[id]; !ok || current != c {
		return false
	}
	delete(m.clients, id)
	c.Close()
	log.Debug().Str("user_id", id.String()).Int("count", len(m.clients)).Msg("Client unregistered")
	return true
}

// Client returns the registered client of a user.
func (m *ManagerService) Client(id models.UserID) (Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	return c, ok
}

// Stats returns client and registry counts.
func (m *ManagerService) Stats() HubStats {
	m.mu.RLock()
	n := len(m.clients)
	m.mu.RUnlock()
	return HubStats{Clients: n, RegistryStats: m.Registry.Snapshot()}
}

// Submit hands an inbound event to the event loop.
func (m *ManagerService) Submit(ctx context.Context, ev models.InboundEvent) error {
	select {
	case m.IncomingCh <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes inbound events one at a time until ctx is done, then closes
// every client. Pairing state is not saved anywhere.
func (m *ManagerService) Run(ctx context.Context) {
	log.Info().Msg("Hub started")
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			log.Info().Msg("Hub stopped")
			return
		case ev := <-m.IncomingCh:
			m.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent applies one inbound event. Run calls it sequentially, which
// makes every event (including both halves of a rotate) one unit of work.
func (m *ManagerService) HandleEvent(ctx context.Context, ev models.InboundEvent) {
	if !ev.IsCommand() {
		m.handlePayload(ctx, ev.UserID, ev.Payload)
		return
	}

	var (
		state State
		err   error
	)
	switch ev.Command {
	case models.CommandJoin:
		state, err = m.Sessions.Join(ev.UserID)
	case models.CommandLeave:
		state, err = m.Sessions.Leave(ev.UserID)
	case models.CommandRotate:
		state, err = m.Sessions.Rotate(ev.UserID)
	case models.CommandDisconnect:
		m.Sessions.Disconnect(ev.UserID)
		return
	default:
		log.Warn().Str("command", string(ev.Command)).Msg("Unknown command dropped")
		return
	}

	logger := log.Debug()
	if err != nil && errors.Is(err, ErrInvalidState) {
		logger = log.Error()
	}
	logger.Err(err).
		Str("user_id", ev.UserID.String()).
		Str("command", string(ev.Command)).
		Stringer("state", state).
		Msg("Command handled")
}

func (m *ManagerService) handlePayload(ctx context.Context, sender models.UserID, p models.Payload) {
	if _, paired := m.Registry.PartnerOf(sender); paired && !m.allowRelay(ctx, sender) {
		m.notify(sender, models.EventRateLimited)
		return
	}

	err := m.Relay.Relay(sender, p)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotConnected):
		m.notify(sender, models.EventNotConnected)
	case errors.Is(err, ErrUnsupportedType):
		m.notify(sender, models.EventUnsupportedPayload)
	case errors.Is(err, ErrDeliveryFailure):
		log.Warn().Err(err).Str("user_id", sender.String()).Msg("Relay not delivered")
		m.notify(sender, models.EventDeliveryFailed)
	default:
		log.Error().Err(err).Str("user_id", sender.String()).Msg("Relay failed")
	}
}

// allowRelay consults the limiter. Limiter errors fail open.
func (m *ManagerService) allowRelay(ctx context.Context, sender models.UserID) bool {
	if m.Limiter == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, m.LimiterTimeout)
	defer cancel()

	ok, err := m.Limiter.Allow(ctx, sender)
	if err != nil {
		log.Warn().Err(err).Msg("Relay limiter unavailable, allowing")
		return true
	}
	return ok
}

// Notify implements Gateway.
func (m *ManagerService) Notify(user models.UserID, event models.EventKind) error {
	return m.deliver(user, models.EventMessage(event))
}

// Forward implements Gateway. The message carries the payload only.
func (m *ManagerService) Forward(recipient models.UserID, payload models.Payload) error {
	return m.deliver(recipient, models.PayloadMessage(payload))
}

// deliver never blocks: a missing client or a full buffer is a delivery
// failure. The read lock keeps Unregister from closing the channel mid-send.
func (m *ManagerService) deliver(user models.UserID, msg models.ChatMessage) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[user]
	if !ok {
		return fmt.Errorf("no client for %s: %w", user, ErrDeliveryFailure)
	}
	select {
	case c.GetSendChannel() <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full for %s: %w", user, ErrDeliveryFailure)
	}
}

func (m *ManagerService) notify(u models.UserID, event models.EventKind) {
	if err := m.Notify(u, event); err != nil {
		log.Warn().Err(err).Str("user_id", u.String()).Str("event", string(event)).Msg("Notification not delivered")
	}
}

func (m *ManagerService) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.clients {
		c.Close()
		delete(m.clients, id)
	}
}
