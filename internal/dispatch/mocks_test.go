package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"

	"anonychat/backend/internal/models"
)

// MockStorage implements storage.Storage with testify expectations.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUser(id string) (*models.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) AllUsers() ([]models.User, error) {
	args := m.Called()
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockStorage) SaveRoom(room *models.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) CloseRoom(roomID string) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByID(roomID string) (*models.Room, error) {
	args := m.Called(roomID)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

func (m *MockStorage) GetActiveRoomIDs() ([]string, error) {
	args := m.Called()
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockStorage) AppendViolation(v *models.Violation) error {
	args := m.Called(v)
	return args.Error(0)
}

func (m *MockStorage) Violations() ([]models.Violation, error) {
	args := m.Called()
	violations, _ := args.Get(0).([]models.Violation)
	return violations, args.Error(1)
}

func (m *MockStorage) AppendTranscript(e *models.TranscriptEntry) error {
	args := m.Called(e)
	return args.Error(0)
}

func (m *MockStorage) TranscriptFor(roomID string) ([]models.TranscriptEntry, error) {
	args := m.Called(roomID)
	entries, _ := args.Get(0).([]models.TranscriptEntry)
	return entries, args.Error(1)
}

func (m *MockStorage) TranscriptSince(t time.Time) ([]models.TranscriptEntry, error) {
	args := m.Called(t)
	entries, _ := args.Get(0).([]models.TranscriptEntry)
	return entries, args.Error(1)
}

func (m *MockStorage) LoadSettings() (*models.Settings, error) {
	args := m.Called()
	settings, _ := args.Get(0).(*models.Settings)
	return settings, args.Error(1)
}

func (m *MockStorage) SaveSettings(s *models.Settings) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockStorage) AppendBroadcast(b *models.BroadcastEntry) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockStorage) Broadcasts() ([]models.BroadcastEntry, error) {
	args := m.Called()
	broadcasts, _ := args.Get(0).([]models.BroadcastEntry)
	return broadcasts, args.Error(1)
}

func (m *MockStorage) AddWaitingMirror(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) RemoveWaitingMirror(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) WaitingMirror() ([]string, error) {
	args := m.Called()
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockStorage) SetBanFlag(userID string, banned bool) error {
	args := m.Called(userID, banned)
	return args.Error(0)
}

func (m *MockStorage) IsBannedFlag(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

// recordingSender captures everything the dispatcher sends.
type recordingSender struct {
	mu   sync.Mutex
	sent []models.Outbound
	// failFor makes sends to one recipient fail.
	failFor string
}

func (s *recordingSender) Send(out models.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && out.To == s.failFor {
		return errors.New("transport unreachable")
	}
	s.sent = append(s.sent, out)
	return nil
}

// textsTo returns the texts sent to one recipient, in order.
func (s *recordingSender) textsTo(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var texts []string
	for _, out := range s.sent {
		if out.To == id {
			texts = append(texts, out.Text)
		}
	}
	return texts
}

// lastTo returns the final message sent to one recipient.
func (s *recordingSender) lastTo(id string) (models.Outbound, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sent) - 1; i >= 0; i-- {
		if s.sent[i].To == id {
			return s.sent[i], true
		}
	}
	return models.Outbound{}, false
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// stubConverter returns a canned sticker, or an error when told to fail.
type stubConverter struct {
	fail     bool
	lastMode bool
}

func (c *stubConverter) Convert(_ context.Context, in models.Media, animated bool) (models.Media, func(), error) {
	c.lastMode = animated
	if c.fail {
		return models.Media{}, nil, errors.New("ffmpeg exploded")
	}
	return models.Media{Kind: models.MediaSticker, LocalPath: "/tmp/sticker.webp"}, func() {}, nil
}

// defaultSettings mirrors the seeded settings row.
func defaultSettings() *models.Settings {
	return &models.Settings{
		ID:                 1,
		WelcomeMessage:     "Selamat datang! Patuhi aturan ya.",
		MenuMessage:        "Hai *{nickname}*! Ketik !chat untuk mulai.",
		DevelopmentMessage: "Bot sedang dalam pengembangan.",
		Badwords:           pq.StringArray{"anjing", "babi", "bangsat"},
	}
}
