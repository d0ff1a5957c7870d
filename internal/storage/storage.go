// Package storage is the persistence collaborator: PostgreSQL (via gorm) for
// durable records and Redis for the hot mirrors of queue and ban state.
// Everything above it talks to the Storage interface so tests can substitute
// a mock.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"anonychat/backend/internal/config"
	"anonychat/backend/internal/models"
)

// Storage is the persistence contract consumed by the core. Implementations
// must treat failures as non-fatal: the in-memory mirrors stay authoritative
// for the process lifetime.
type Storage interface {
	GetUser(id string) (*models.User, error)
	SaveUser(user *models.User) error
	AllUsers() ([]models.User, error)

	SaveRoom(room *models.Room) error
	CloseRoom(roomID string) error
	GetRoomByID(roomID string) (*models.Room, error)
	GetActiveRoomIDs() ([]string, error)

	AppendViolation(v *models.Violation) error
	Violations() ([]models.Violation, error)

	AppendTranscript(e *models.TranscriptEntry) error
	TranscriptFor(roomID string) ([]models.TranscriptEntry, error)
	TranscriptSince(t time.Time) ([]models.TranscriptEntry, error)

	LoadSettings() (*models.Settings, error)
	SaveSettings(s *models.Settings) error

	AppendBroadcast(b *models.BroadcastEntry) error
	Broadcasts() ([]models.BroadcastEntry, error)

	AddWaitingMirror(userID string) error
	RemoveWaitingMirror(userID string) error
	WaitingMirror() ([]string, error)

	SetBanFlag(userID string, banned bool) error
	IsBannedFlag(userID string) (bool, error)
}

// Service implements Storage over gorm and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructs the storage service. Redis may be nil (the admin CLI
// runs without it); mirror operations then become no-ops.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{DB: db, Redis: rdb, Ctx: context.Background()}
}

// GetUser looks a user up by transport id. Returns (nil, nil) when the user
// has never been seen.
func (s *Service) GetUser(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) AllUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("joined_at asc").Find(&users).Error
	return users, err
}

func (s *Service) SaveRoom(room *models.Room) error {
	return s.DB.Save(room).Error
}

// CloseRoom marks a room inactive and stamps its end time.
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.Room{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  time.Now(),
		}).Error
}

func (s *Service) GetRoomByID(roomID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.First(&room, "room_id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetActiveRoomIDs returns every room still marked active, used to restore
// hub state after a restart.
func (s *Service) GetActiveRoomIDs() ([]string, error) {
	var roomIDs []string
	err := s.DB.Model(&models.Room{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error
	return roomIDs, err
}

func (s *Service) AppendViolation(v *models.Violation) error {
	if err := s.DB.Create(v).Error; err != nil {
		log.Error().Err(err).Str("room", v.RoomID).Msg("failed to append violation")
		return err
	}
	return nil
}

func (s *Service) Violations() ([]models.Violation, error) {
	var violations []models.Violation
	err := s.DB.Order("created_at asc").Find(&violations).Error
	return violations, err
}

func (s *Service) AppendTranscript(e *models.TranscriptEntry) error {
	if err := s.DB.Create(e).Error; err != nil {
		log.Error().Err(err).Str("room", e.RoomID).Msg("failed to append transcript entry")
		return err
	}
	return nil
}

func (s *Service) TranscriptFor(roomID string) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	err := s.DB.Where("room_id = ?", roomID).Order("created_at asc").Find(&entries).Error
	return entries, err
}

// TranscriptSince returns all entries newer than t, for the peak-hours
// analytics window.
func (s *Service) TranscriptSince(t time.Time) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	err := s.DB.Where("created_at >= ?", t).Find(&entries).Error
	return entries, err
}

// LoadSettings fetches the settings row, seeding defaults on first run.
func (s *Service) LoadSettings() (*models.Settings, error) {
	defaults := models.Settings{
		ID:                 1,
		WelcomeMessage:     DefaultWelcomeMessage,
		MenuMessage:        DefaultMenuMessage,
		DevelopmentMessage: DefaultDevelopmentMessage,
		Badwords:           append([]string(nil), config.DefaultBadwords...),
	}
	var settings models.Settings
	if err := s.DB.Where(models.Settings{ID: 1}).Attrs(defaults).FirstOrCreate(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Service) SaveSettings(settings *models.Settings) error {
	settings.ID = 1
	return s.DB.Save(settings).Error
}

func (s *Service) AppendBroadcast(b *models.BroadcastEntry) error {
	return s.DB.Create(b).Error
}

func (s *Service) Broadcasts() ([]models.BroadcastEntry, error) {
	var entries []models.BroadcastEntry
	err := s.DB.Order("created_at asc").Find(&entries).Error
	return entries, err
}

const waitingMirrorKey = "anonychat:waiting"

// AddWaitingMirror mirrors a queue insert into Redis so the waiting queue
// stays inspectable from outside the process.
func (s *Service) AddWaitingMirror(userID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.SAdd(s.Ctx, waitingMirrorKey, userID).Err()
}

func (s *Service) RemoveWaitingMirror(userID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.SRem(s.Ctx, waitingMirrorKey, userID).Err()
}

func (s *Service) WaitingMirror() ([]string, error) {
	if s.Redis == nil {
		return nil, nil
	}
	return s.Redis.SMembers(s.Ctx, waitingMirrorKey).Result()
}

// SetBanFlag keeps a fast ban lookup in Redis alongside the durable user row.
func (s *Service) SetBanFlag(userID string, banned bool) error {
	if s.Redis == nil {
		return nil
	}
	key := "ban:" + userID
	if banned {
		return s.Redis.Set(s.Ctx, key, "1", 0).Err()
	}
	return s.Redis.Del(s.Ctx, key).Err()
}

func (s *Service) IsBannedFlag(userID string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	_, err := s.Redis.Get(s.Ctx, "ban:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
