package messaging

import (
	"context"
	"sync"

	"github.com/daftarche/bankbook/internal/models"
)

// SentMessage records a single outgoing message for inspection in tests.
type SentMessage struct {
	To       int64
	Body     string
	Keyboard models.Keyboard
	PhotoID  string
	FileID   string
	Caption  string
}

// MockService is an in-memory Service implementation used in tests.
type MockService struct {
	mu       sync.Mutex
	sent     []SentMessage
	events   chan models.Event
	users    map[int64]models.ChatUser
	sendErr  error
	stopOnce sync.Once
}

// NewMockService creates a mock service with a buffered event channel.
func NewMockService() *MockService {
	return &MockService{
		events: make(chan models.Event, 64),
		users:  make(map[int64]models.ChatUser),
	}
}

// SetSendError makes all subsequent send calls fail with err.
func (m *MockService) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// AddUser registers a user so LookupUser can resolve it.
func (m *MockService) AddUser(u models.ChatUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// Inject places an event on the incoming event channel.
func (m *MockService) Inject(ev models.Event) {
	m.events <- ev
}

// Sent returns a copy of all recorded outgoing messages.
func (m *MockService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastSent returns the most recent outgoing message, or false if none.
func (m *MockService) LastSent() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return SentMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// Reset clears all recorded outgoing messages.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

func (m *MockService) record(msg SentMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MockService) SendMessage(ctx context.Context, to int64, body string) error {
	return m.record(SentMessage{To: to, Body: body})
}

func (m *MockService) SendKeyboard(ctx context.Context, to int64, body string, kb models.Keyboard) error {
	return m.record(SentMessage{To: to, Body: body, Keyboard: kb})
}

func (m *MockService) SendPhoto(ctx context.Context, to int64, fileID, caption string) error {
	return m.record(SentMessage{To: to, PhotoID: fileID, Caption: caption})
}

func (m *MockService) SendDocument(ctx context.Context, to int64, fileID string) error {
	return m.record(SentMessage{To: to, FileID: fileID})
}

func (m *MockService) LookupUser(ctx context.Context, id int64) (models.ChatUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.ChatUser{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MockService) Events() <-chan models.Event {
	return m.events
}

func (m *MockService) Start(ctx context.Context) error {
	return nil
}

func (m *MockService) Stop() {
	m.stopOnce.Do(func() { close(m.events) })
}
