// Package settings owns the process-wide moderation settings: the mode
// flags, the user-facing message templates and the profanity word list.
// The copy held here is authoritative; every mutation writes back through
// storage and a failed write only logs.
package settings

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
)

// Service guards the live settings copy.
type Service struct {
	mu       sync.RWMutex
	current  models.Settings
	storage  storage.Storage
	onChange func(badwords []string)
}

// New loads (or seeds) the settings row and wraps it.
func New(s storage.Storage) (*Service, error) {
	loaded, err := s.LoadSettings()
	if err != nil {
		return nil, err
	}
	return &Service{current: *loaded, storage: s}, nil
}

// SetBadwordsChanged registers the hook invoked whenever the word list
// changes. The moderation filter uses it to rebuild its token set.
func (svc *Service) SetBadwordsChanged(fn func(badwords []string)) {
	svc.mu.Lock()
	svc.onChange = fn
	fnCopy := svc.onChange
	words := append([]string(nil), svc.current.Badwords...)
	svc.mu.Unlock()
	if fnCopy != nil {
		fnCopy(words)
	}
}

// Snapshot returns a copy of the current settings.
func (svc *Service) Snapshot() models.Settings {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	s := svc.current
	s.Badwords = append([]string(nil), svc.current.Badwords...)
	return s
}

// MaintenanceMode reports the maintenance gate state.
func (svc *Service) MaintenanceMode() bool {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current.MaintenanceMode
}

// DevelopmentMode reports the development gate state.
func (svc *Service) DevelopmentMode() bool {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current.DevelopmentMode
}

// SetMaintenanceMode flips the maintenance gate and persists.
func (svc *Service) SetMaintenanceMode(enabled bool) {
	svc.mutate(func(s *models.Settings) { s.MaintenanceMode = enabled })
}

// SetDevelopmentMode flips the development gate and persists.
func (svc *Service) SetDevelopmentMode(enabled bool) {
	svc.mutate(func(s *models.Settings) { s.DevelopmentMode = enabled })
}

// UpdateMessages overwrites the non-empty templates and persists.
func (svc *Service) UpdateMessages(welcome, menu, development string) {
	svc.mutate(func(s *models.Settings) {
		if welcome != "" {
			s.WelcomeMessage = welcome
		}
		if menu != "" {
			s.MenuMessage = menu
		}
		if development != "" {
			s.DevelopmentMessage = development
		}
	})
}

// AddBadword inserts a lowercased token; duplicates are ignored.
func (svc *Service) AddBadword(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	var result []string
	svc.mutateWords(func(s *models.Settings) {
		if word == "" {
			result = append([]string(nil), s.Badwords...)
			return
		}
		for _, w := range s.Badwords {
			if w == word {
				result = append([]string(nil), s.Badwords...)
				return
			}
		}
		s.Badwords = append(s.Badwords, word)
		result = append([]string(nil), s.Badwords...)
	})
	return result
}

// RemoveBadword deletes a token, matching case-insensitively.
func (svc *Service) RemoveBadword(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	var result []string
	svc.mutateWords(func(s *models.Settings) {
		kept := s.Badwords[:0]
		for _, w := range s.Badwords {
			if w != word {
				kept = append(kept, w)
			}
		}
		s.Badwords = kept
		result = append([]string(nil), s.Badwords...)
	})
	return result
}

// Badwords returns a copy of the current word list.
func (svc *Service) Badwords() []string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return append([]string(nil), svc.current.Badwords...)
}

// Render substitutes the {nickname} placeholder in a template.
func Render(template, nickname string) string {
	return strings.ReplaceAll(template, "{nickname}", nickname)
}

// WelcomeMessage returns the rules template.
func (svc *Service) WelcomeMessage() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current.WelcomeMessage
}

// MenuMessage renders the menu template for a nickname.
func (svc *Service) MenuMessage(nickname string) string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return Render(svc.current.MenuMessage, nickname)
}

// DevelopmentMessage returns the development-mode notice.
func (svc *Service) DevelopmentMessage() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current.DevelopmentMessage
}

func (svc *Service) mutate(fn func(*models.Settings)) {
	svc.mu.Lock()
	fn(&svc.current)
	snapshot := svc.current
	svc.mu.Unlock()
	if err := svc.storage.SaveSettings(&snapshot); err != nil {
		log.Error().Err(err).Msg("failed to persist settings")
	}
}

func (svc *Service) mutateWords(fn func(*models.Settings)) {
	svc.mu.Lock()
	fn(&svc.current)
	snapshot := svc.current
	words := append([]string(nil), svc.current.Badwords...)
	onChange := svc.onChange
	svc.mu.Unlock()
	if err := svc.storage.SaveSettings(&snapshot); err != nil {
		log.Error().Err(err).Msg("failed to persist settings")
	}
	if onChange != nil {
		onChange(words)
	}
}
