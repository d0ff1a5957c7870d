// Package chathub owns the shared pairing state: the FIFO waiting queue and
// the active-session map. It is the only place either is mutated, and every
// operation runs under one lock so no caller can observe a half-applied
// pairing or a one-sided teardown.
package chathub

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/metrics"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
)

// Session is one side of an active pairing. Each room has exactly two
// entries, one per participant, sharing a room id. Strikes count profanity
// hits by this side only.
type Session struct {
	RoomID    string
	UserID    string
	PartnerID string
	// Initiator marks the side whose match request created the room.
	Initiator bool
	// Strikes is monotonic within the session; it never decrements.
	Strikes   int
	StartedAt time.Time
}

// MatchResult is the outcome of a RequestMatch call.
type MatchResult struct {
	// Queued is true when no partner was available and the user was
	// appended to the waiting queue.
	Queued bool
	// Session is the requester's side of the new pairing when Queued is
	// false.
	Session *Session
}

// Pair is one active room for the dashboard, deduplicated by room id.
type Pair struct {
	RoomID  string `json:"roomId"`
	User1ID string `json:"user1Id"`
	User2ID string `json:"user2Id"`
}

// Hub is the coordinating service object for queue and session state.
type Hub struct {
	mu       sync.Mutex
	queue    []string
	sessions map[string]*Session

	storage storage.Storage
	rooms   *roomIDGenerator
}

// New creates an empty hub. prefix is prepended to every generated room id.
func New(s storage.Storage, prefix string) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		storage:  s,
		rooms:    newRoomIDGenerator(prefix),
	}
}

// RestoreActiveRooms reloads sessions that were active when the process last
// stopped. Strike counters restart at zero; the rooms themselves resume.
// The waiting queue does not survive a restart, so its Redis mirror is
// cleared before traffic is served.
func (h *Hub) RestoreActiveRooms() {
	if waiting, err := h.storage.WaitingMirror(); err != nil {
		log.Error().Err(err).Msg("failed to read waiting queue mirror")
	} else {
		for _, id := range waiting {
			if err := h.storage.RemoveWaitingMirror(id); err != nil {
				log.Error().Err(err).Str("user", id).Msg("failed to clear stale queue mirror entry")
			}
		}
		if len(waiting) > 0 {
			log.Info().Int("entries", len(waiting)).Msg("cleared stale waiting queue mirror")
		}
	}

	roomIDs, err := h.storage.GetActiveRoomIDs()
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve active rooms from storage")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, roomID := range roomIDs {
		room, err := h.storage.GetRoomByID(roomID)
		if err != nil || room == nil {
			log.Warn().Str("room", roomID).Msg("active room missing from storage, skipping")
			continue
		}
		if _, ok := h.sessions[room.User1ID]; ok {
			continue
		}
		if _, ok := h.sessions[room.User2ID]; ok {
			continue
		}
		now := time.Now()
		h.sessions[room.User1ID] = &Session{RoomID: roomID, UserID: room.User1ID, PartnerID: room.User2ID, Initiator: true, StartedAt: now}
		h.sessions[room.User2ID] = &Session{RoomID: roomID, UserID: room.User2ID, PartnerID: room.User1ID, StartedAt: now}
		log.Info().Str("room", roomID).Str("user1", room.User1ID).Str("user2", room.User2ID).Msg("restored active room")
	}
	h.updateGauges()
	log.Info().Int("rooms", len(roomIDs)).Msg("active room recovery complete")
}

// RequestMatch pairs the user with the oldest waiter, or appends them to the
// queue when nobody is waiting. A user can never be both queued and in a
// session.
func (h *Hub) RequestMatch(userID string) (MatchResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[userID]; ok {
		return MatchResult{}, ErrAlreadyInSession
	}
	if h.queued(userID) {
		return MatchResult{}, ErrAlreadyQueued
	}

	if len(h.queue) == 0 {
		h.queue = append(h.queue, userID)
		if err := h.storage.AddWaitingMirror(userID); err != nil {
			log.Error().Err(err).Str("user", userID).Msg("failed to mirror queue insert")
		}
		h.updateGauges()
		return MatchResult{Queued: true}, nil
	}

	partnerID := h.queue[0]
	h.queue = h.queue[1:]
	if partnerID == userID {
		// Can only happen through a logic error elsewhere; the membership
		// check above keeps the queue duplicate-free.
		h.queue = append(h.queue, userID)
		return MatchResult{}, ErrNoPartner
	}
	if err := h.storage.RemoveWaitingMirror(partnerID); err != nil {
		log.Error().Err(err).Str("user", partnerID).Msg("failed to mirror queue removal")
	}

	roomID := h.rooms.next(h.activeRoomIDs())
	now := time.Now()
	mine := &Session{RoomID: roomID, UserID: userID, PartnerID: partnerID, Initiator: true, StartedAt: now}
	theirs := &Session{RoomID: roomID, UserID: partnerID, PartnerID: userID, StartedAt: now}
	h.sessions[userID] = mine
	h.sessions[partnerID] = theirs

	if err := h.storage.SaveRoom(&models.Room{
		RoomID:    roomID,
		User1ID:   userID,
		User2ID:   partnerID,
		IsActive:  true,
		StartedAt: now,
	}); err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to persist room")
	}

	h.updateGauges()
	log.Info().Str("room", roomID).Str("user1", userID).Str("user2", partnerID).Msg("paired")
	return MatchResult{Session: copySession(mine)}, nil
}

// Cancel removes the user from the waiting queue.
func (h *Hub) Cancel(userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, id := range h.queue {
		if id == userID {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			if err := h.storage.RemoveWaitingMirror(userID); err != nil {
				log.Error().Err(err).Str("user", userID).Msg("failed to mirror queue removal")
			}
			h.updateGauges()
			return nil
		}
	}
	return ErrNotQueued
}

// SessionFor returns a copy of the user's session side, or false.
func (h *Hub) SessionFor(userID string) (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Teardown removes both sides of the user's session in one step and returns
// the removed side (with the partner id) so the caller can notify both
// parties. Every session-ending path goes through here.
func (h *Hub) Teardown(userID string) (Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[userID]
	if !ok {
		return Session{}, ErrNotInSession
	}
	removed := *s
	delete(h.sessions, userID)
	delete(h.sessions, s.PartnerID)

	if err := h.storage.CloseRoom(removed.RoomID); err != nil {
		log.Error().Err(err).Str("room", removed.RoomID).Msg("failed to close room")
	}
	h.updateGauges()
	log.Info().Str("room", removed.RoomID).Str("user", userID).Msg("session torn down")
	return removed, nil
}

// AddStrike increments the profanity strike counter on the user's side and
// returns the new count.
func (h *Hub) AddStrike(userID string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[userID]
	if !ok {
		return 0, ErrNotInSession
	}
	s.Strikes++
	return s.Strikes, nil
}

// Waiting returns the queue contents, oldest first.
func (h *Hub) Waiting() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.queue...)
}

// ActivePairs returns one entry per active room.
func (h *Hub) ActivePairs() []Pair {
	h.mu.Lock()
	defer h.mu.Unlock()
	pairs := make([]Pair, 0, len(h.sessions)/2)
	for _, s := range h.sessions {
		if s.Initiator {
			pairs = append(pairs, Pair{RoomID: s.RoomID, User1ID: s.UserID, User2ID: s.PartnerID})
		}
	}
	return pairs
}

func (h *Hub) queued(userID string) bool {
	for _, id := range h.queue {
		if id == userID {
			return true
		}
	}
	return false
}

func (h *Hub) activeRoomIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(h.sessions))
	for _, s := range h.sessions {
		ids[s.RoomID] = struct{}{}
	}
	return ids
}

func (h *Hub) updateGauges() {
	metrics.QueueSize.Set(float64(len(h.queue)))
	metrics.ActiveSessions.Set(float64(len(h.sessions) / 2))
}

func copySession(s *Session) *Session {
	c := *s
	return &c
}
