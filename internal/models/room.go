package models

import "time"

// Room represents a 1-on-1 chat session between two users.
// It holds the participants and the active flag; the live strike counters
// stay in the hub's in-memory session entries.
type Room struct {
	// RoomID is the unique identifier, format <prefix><6-digit-random>.
	RoomID string `gorm:"primaryKey" json:"roomId"`
	// User1ID is the user whose match request created the room.
	User1ID string `json:"user1Id"`
	// User2ID is the user popped from the waiting queue.
	User2ID string `json:"user2Id"`
	// IsActive indicates whether the session is still running.
	IsActive bool `json:"isActive"`
	// StartedAt is the pairing timestamp.
	StartedAt time.Time `json:"startedAt"`
	// EndedAt is set when the session is torn down.
	EndedAt time.Time `json:"endedAt"`
}
