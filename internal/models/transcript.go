package models

import (
	"time"

	"gorm.io/gorm"
)

// TranscriptEntry is one line of a room's append-only message history.
// Media messages store a "[Media: <kind>]" tag instead of the payload so the
// log never carries binary content. Entries outlive the session for audit
// replay and report evidence.
type TranscriptEntry struct {
	gorm.Model `json:"-"`

	RoomID         string    `gorm:"not null;index:idx_room_entry" json:"-"`
	Timestamp      time.Time `json:"timestamp"`
	SenderID       string    `gorm:"not null;index:idx_room_entry" json:"senderId"`
	SenderNickname string    `json:"senderNickname"`
	// Message is the text body, or the media tag for non-text entries.
	Message string `gorm:"type:text" json:"message"`
	// FromInitiator marks which side of the pairing sent the entry.
	FromInitiator bool `json:"isSender1"`
}

// MediaTag renders the transcript placeholder for a media kind.
func MediaTag(kind MediaKind) string {
	return "[Media: " + string(kind) + "]"
}
