package models

import "time"

// BroadcastEntry records one admin broadcast run. The entry is appended when
// the run starts; delivery itself is best-effort and not tracked per
// recipient.
type BroadcastEntry struct {
	// ID is a random UUID assigned when the broadcast is accepted.
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"timestamp"`
	// Message is the admin-supplied text, without the appended footer.
	Message string `gorm:"type:text" json:"message"`
	// ImageFile is the stored filename of the optional attachment.
	ImageFile string `json:"image,omitempty"`
	// SentTo is the recipient count at the time the run started.
	SentTo int `json:"sentTo"`
}
