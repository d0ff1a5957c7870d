package models

import "time"

// Violation type tags, kept in the wording the review dashboard displays.
const (
	ViolationProfanity = "Kata Kasar"
	ViolationReport    = "Laporan Pengguna"
)

// Violation is an immutable audit record: either a profanity hit inside a
// session or a user-filed report. Rows are append-only; nothing updates or
// deletes them after insertion.
type Violation struct {
	// ID is a random UUID assigned on append.
	ID string `gorm:"primaryKey" json:"id"`
	// Type is ViolationProfanity or ViolationReport.
	Type string `gorm:"index" json:"type"`
	// RoomID is the session the violation happened in.
	RoomID    string    `gorm:"index" json:"roomId"`
	CreatedAt time.Time `json:"timestamp"`

	// Profanity variant: the offending user and the message that tripped
	// the filter.
	UserID   string `json:"userId,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Message  string `json:"message,omitempty"`

	// Report variant: both parties plus a JSON snapshot of the last
	// transcript entries at filing time.
	ReporterID       string `gorm:"index" json:"reporterId,omitempty"`
	ReporterNickname string `json:"reporterNickname,omitempty"`
	ReportedID       string `gorm:"index" json:"reportedId,omitempty"`
	ReportedNickname string `json:"reportedNickname,omitempty"`
	// Snapshot holds the marshalled []TranscriptEntry tail.
	Snapshot string `gorm:"type:jsonb" json:"chatHistory,omitempty"`
}

// Involves reports whether the violation references the given user, as
// offender, reporter or reported party.
func (v *Violation) Involves(userID string) bool {
	return v.UserID == userID || v.ReporterID == userID || v.ReportedID == userID
}
