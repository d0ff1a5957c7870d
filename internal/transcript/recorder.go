// Package transcript records the per-room message history. Every forwarded
// message is appended to storage for audit replay and to a small in-memory
// ring that serves the tail snapshot attached to user reports.
package transcript

import (
	"sync"

	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/config"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
)

// Recorder is goroutine-safe; rings are created lazily per room.
type Recorder struct {
	mu      sync.RWMutex
	rings   map[string]*ring
	storage storage.Storage
}

// ring is a fixed-size circular buffer of transcript entries.
type ring struct {
	items []models.TranscriptEntry
	pos   int
	count int
}

// NewRecorder creates an empty recorder.
func NewRecorder(s storage.Storage) *Recorder {
	return &Recorder{
		rings:   make(map[string]*ring),
		storage: s,
	}
}

// Record appends an entry to the room's history. Storage failures are logged;
// the in-memory tail still advances.
func (r *Recorder) Record(e models.TranscriptEntry) {
	r.mu.Lock()
	rb, ok := r.rings[e.RoomID]
	if !ok {
		rb = &ring{items: make([]models.TranscriptEntry, config.ReportTailSize)}
		r.rings[e.RoomID] = rb
	}
	rb.items[rb.pos] = e
	rb.pos = (rb.pos + 1) % len(rb.items)
	if rb.count < len(rb.items) {
		rb.count++
	}
	r.mu.Unlock()

	if err := r.storage.AppendTranscript(&e); err != nil {
		log.Error().Err(err).Str("room", e.RoomID).Msg("transcript write failed, tail buffer remains authoritative")
	}
}

// Tail returns the last entries for a room in chronological order, at most
// the ring capacity. Rooms restored after a restart have no ring yet, so an
// empty ring falls back to the persisted history.
func (r *Recorder) Tail(roomID string) []models.TranscriptEntry {
	r.mu.RLock()
	rb, ok := r.rings[roomID]
	if ok {
		out := make([]models.TranscriptEntry, rb.count)
		start := (rb.pos - rb.count + len(rb.items)) % len(rb.items)
		for i := 0; i < rb.count; i++ {
			out[i] = rb.items[(start+i)%len(rb.items)]
		}
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	persisted, err := r.storage.TranscriptFor(roomID)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("transcript tail read failed")
		return []models.TranscriptEntry{}
	}
	if len(persisted) > config.ReportTailSize {
		persisted = persisted[len(persisted)-config.ReportTailSize:]
	}
	if persisted == nil {
		persisted = []models.TranscriptEntry{}
	}
	return persisted
}

// History returns the full persisted transcript for dashboard replay.
func (r *Recorder) History(roomID string) ([]models.TranscriptEntry, error) {
	return r.storage.TranscriptFor(roomID)
}

// Release drops the in-memory ring once a session ends. The persisted
// history is retained.
func (r *Recorder) Release(roomID string) {
	r.mu.Lock()
	delete(r.rings, roomID)
	r.mu.Unlock()
}
