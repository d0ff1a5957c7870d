package models

import "github.com/lib/pq"

// Settings is the single process-wide configuration row. It is loaded once at
// startup, mutated through the admin API, and written back after every change.
type Settings struct {
	// ID pins the row; there is exactly one.
	ID uint `gorm:"primaryKey" json:"-"`
	// MaintenanceMode rejects everyone but the admin id.
	MaintenanceMode bool `json:"maintenanceMode"`
	// DevelopmentMode rejects everyone but the operator id.
	DevelopmentMode bool `json:"developmentMode"`
	// WelcomeMessage is shown once per user, gated by User.SeenRules.
	WelcomeMessage string `gorm:"type:text" json:"welcome"`
	// MenuMessage supports a {nickname} substitution point.
	MenuMessage string `gorm:"type:text" json:"menu"`
	// DevelopmentMessage is the reply non-operators get in development mode.
	DevelopmentMessage string `gorm:"type:text" json:"development"`
	// Badwords is the lowercase profanity token list.
	Badwords pq.StringArray `gorm:"type:text[]" json:"badwords"`
}
