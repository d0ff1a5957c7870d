// Package userstore owns the per-user records. The in-memory map is the
// authoritative copy; every mutation writes through to storage, and a failed
// write is logged without invalidating the mirror.
package userstore

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
)

// Store is the UserRecord store.
type Store struct {
	mu      sync.Mutex
	users   map[string]*models.User
	storage storage.Storage
}

// New builds the store and loads the existing records into the mirror.
func New(s storage.Storage) *Store {
	store := &Store{
		users:   make(map[string]*models.User),
		storage: s,
	}
	users, err := s.AllUsers()
	if err != nil {
		log.Error().Err(err).Msg("failed to load user records, starting with an empty mirror")
		return store
	}
	for i := range users {
		u := users[i]
		store.users[u.ID] = &u
	}
	return store
}

// Touch returns the record for a transport id, creating it on first contact,
// and refreshes the last-active timestamp. The returned copy is safe to read
// without holding the store's lock.
func (st *Store) Touch(id string) models.User {
	st.mu.Lock()
	defer st.mu.Unlock()

	u, ok := st.users[id]
	if !ok {
		now := time.Now()
		u = &models.User{
			ID:         id,
			Nickname:   models.DeriveNickname(id),
			JoinedAt:   now,
			LastActive: now,
		}
		st.users[id] = u
	}
	u.LastActive = time.Now()
	st.persist(u)
	return *u
}

// Get returns a copy of the record, without creating or touching it.
func (st *Store) Get(id string) (models.User, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	u, ok := st.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// IncChatCount bumps the session counter after a successful pairing.
func (st *Store) IncChatCount(id string) {
	st.mutate(id, func(u *models.User) { u.ChatCount++ })
}

// Warn increments the manual warning counter and returns the new value.
func (st *Store) Warn(id string) (int, bool) {
	var warnings int
	ok := st.mutate(id, func(u *models.User) {
		u.Warnings++
		warnings = u.Warnings
	})
	return warnings, ok
}

// SetBanned flips the ban flag. The Redis fast-path flag is updated together
// with the durable row.
func (st *Store) SetBanned(id string, banned bool) bool {
	ok := st.mutate(id, func(u *models.User) { u.Banned = banned })
	if ok {
		if err := st.storage.SetBanFlag(id, banned); err != nil {
			log.Error().Err(err).Str("user", id).Msg("failed to update ban flag mirror")
		}
	}
	return ok
}

// ToggleBan flips the ban flag and returns the new state.
func (st *Store) ToggleBan(id string) (banned bool, ok bool) {
	ok = st.mutate(id, func(u *models.User) {
		u.Banned = !u.Banned
		banned = u.Banned
	})
	if ok {
		if err := st.storage.SetBanFlag(id, banned); err != nil {
			log.Error().Err(err).Str("user", id).Msg("failed to update ban flag mirror")
		}
	}
	return banned, ok
}

// IsBanned reports whether the user is banned. The in-memory record is
// checked first; the Redis flag covers bans applied out of process (the
// admin CLI) while the bot is running, and is folded back into the mirror
// when it disagrees.
func (st *Store) IsBanned(id string) bool {
	st.mu.Lock()
	u, ok := st.users[id]
	banned := ok && u.Banned
	st.mu.Unlock()
	if banned {
		return true
	}

	flagged, err := st.storage.IsBannedFlag(id)
	if err != nil {
		log.Warn().Err(err).Str("user", id).Msg("ban flag lookup failed")
		return false
	}
	if flagged && ok {
		st.mutate(id, func(u *models.User) { u.Banned = true })
	}
	return flagged
}

// MarkRulesSeen records that the one-time rules message has been shown.
func (st *Store) MarkRulesSeen(id string) {
	st.mutate(id, func(u *models.User) { u.SeenRules = true })
}

// All returns a snapshot of every record, ordered by join time.
func (st *Store) All() []models.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.User, 0, len(st.users))
	for _, u := range st.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

// NotBanned returns the ids of every user eligible for a broadcast.
func (st *Store) NotBanned() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]string, 0, len(st.users))
	for id, u := range st.users {
		if !u.Banned {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (st *Store) mutate(id string, fn func(*models.User)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	u, ok := st.users[id]
	if !ok {
		return false
	}
	fn(u)
	st.persist(u)
	return true
}

func (st *Store) persist(u *models.User) {
	if err := st.storage.SaveUser(u); err != nil {
		log.Error().Err(err).Str("user", u.ID).Msg("failed to persist user record")
	}
}
