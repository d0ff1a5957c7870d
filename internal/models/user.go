package models

import (
	"strings"
	"time"
)

// User represents one account on the messaging transport. The transport's
// opaque sender id is the primary key; records are created lazily on first
// contact and never deleted.
type User struct {
	// ID is the stable transport account identifier (e.g. "628123@c.us").
	ID string `gorm:"primaryKey" json:"id"`
	// Nickname defaults to the local part of the transport id.
	Nickname string `json:"nickname"`
	// JoinedAt is the timestamp of the user's first contact.
	JoinedAt time.Time `json:"joinDate"`
	// LastActive is refreshed on every inbound message.
	LastActive time.Time `json:"lastActive"`
	// ChatCount is the number of sessions the user has been paired into.
	ChatCount int `json:"chatCount"`
	// Warnings is the number of manual admin warnings issued.
	Warnings int `json:"warnings"`
	// Banned blocks all interaction until an admin clears it.
	Banned bool `json:"isBanned"`
	// SeenRules gates the one-time rules message on first greeting.
	SeenRules bool `json:"hasSeenRules"`
}

// DeriveNickname returns the default nickname for a transport id: the part
// before the first '@' or ':' separator, or the id itself.
func DeriveNickname(id string) string {
	if i := strings.IndexAny(id, "@:"); i >= 0 {
		return id[:i]
	}
	return id
}
