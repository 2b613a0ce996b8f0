package chathub_test

import (
	"context"
	"strangerchat/backend/internal/models"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a testify mock of chathub.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Notify(user models.UserID, event models.EventKind) error {
	args := m.Called(user, event)
	return args.Error(0)
}

func (m *MockGateway) Forward(recipient models.UserID, payload models.Payload) error {
	args := m.Called(recipient, payload)
	return args.Error(0)
}

type notification struct {
	User  models.UserID
	Event models.EventKind
}

type forward struct {
	Recipient models.UserID
	Payload   models.Payload
}

// recordingGateway keeps every notification and forward in order.
type recordingGateway struct {
	mu            sync.Mutex
	notifications []notification
	forwards      []forward
	forwardErr    error
}

func (g *recordingGateway) Notify(user models.UserID, event models.EventKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, notification{User: user, Event: event})
	return nil
}

func (g *recordingGateway) Forward(recipient models.UserID, payload models.Payload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.forwardErr != nil {
		return g.forwardErr
	}
	g.forwards = append(g.forwards, forward{Recipient: recipient, Payload: payload})
	return nil
}

// eventsFor returns the events delivered to one user, in order.
func (g *recordingGateway) eventsFor(user models.UserID) []models.EventKind {
	g.mu.Lock()
	defer g.mu.Unlock()
	var events []models.EventKind
	for _, n := range g.notifications {
		if n.User == user {
			events = append(events, n.Event)
		}
	}
	return events
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = nil
	g.forwards = nil
}

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	userID models.UserID
	send   chan models.ChatMessage
	closed bool
	mu     sync.Mutex
}

func newMockClient(id models.UserID) *MockClient {
	return &MockClient{
		userID: id,
		send:   make(chan models.ChatMessage, 10), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetUserID() models.UserID                  { return c.userID }
func (c *MockClient) GetSendChannel() chan<- models.ChatMessage { return c.send }
func (c *MockClient) Run()                                      {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *MockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// DrainMessages returns everything queued for the client so far.
func (c *MockClient) DrainMessages() []models.ChatMessage {
	var messages []models.ChatMessage
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return messages
			}
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}

// MockLimiter is a testify mock of chathub.RelayLimiter.
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, user models.UserID) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

// MockUsage is a testify mock of chathub.UsageRecorder.
type MockUsage struct {
	mock.Mock
}

func (m *MockUsage) RecordMatch()    { m.Called() }
func (m *MockUsage) RecordMessage()  { m.Called() }
func (m *MockUsage) RecordRotation() { m.Called() }
