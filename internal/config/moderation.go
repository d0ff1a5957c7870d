package config

import "time"

const (
	// Moderation
	StrikeLimit     = 3  // profanity strikes in one session before auto-ban
	ReportTailSize  = 10 // transcript entries attached to a report
	LogRingCapacity = 100

	// Broadcast pacing between recipients, randomized in [Min, Max).
	BroadcastDelayMin = 1 * time.Second
	BroadcastDelayMax = 5 * time.Second

	// Sticker conversion
	StickerMaxSeconds = 7
	StickerEdge       = 512
)

// GreetingAliases trigger the menu (and, once per user, the rules message)
// when received outside a session.
var GreetingAliases = []string{"halo", "p", "assalamualaikum", "!menu", "hai"}

// DefaultBadwords seeds the profanity list the first time settings are
// created. Admins manage the live list through the dashboard.
var DefaultBadwords = []string{"anjing", "babi", "kontol", "memek", "bangsat", "asu", "bajingan"}
