package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"anonychat/backend/internal/log"
	"anonychat/backend/internal/models"
)

// startOfToday returns local midnight. Truncate would snap to a UTC day
// boundary and misclassify "active today" off-UTC.
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// Status returns the dashboard snapshot: counters, queue and session state,
// the user list, violations, chart data, settings and the broadcast log.
func (h *Handler) Status(c *gin.Context) {
	users := h.Users.All()

	today := startOfToday()
	dayAgo := time.Now().Add(-24 * time.Hour)
	activeToday, banned := 0, 0
	for _, u := range users {
		if u.LastActive.After(today) {
			activeToday++
		}
		if u.Banned {
			banned++
		}
	}
	chats24h := 0
	if entries, err := h.Storage.TranscriptSince(dayAgo); err == nil {
		chats24h = len(entries)
	}

	waiting := make([]models.User, 0)
	for _, id := range h.Hub.Waiting() {
		if u, ok := h.Users.Get(id); ok {
			waiting = append(waiting, u)
		}
	}
	pairs := make([]gin.H, 0)
	for _, p := range h.Hub.ActivePairs() {
		u1, _ := h.Users.Get(p.User1ID)
		u2, _ := h.Users.Get(p.User2ID)
		pairs = append(pairs, gin.H{"roomId": p.RoomID, "user1": u1.Nickname, "user2": u2.Nickname})
	}

	violations, err := h.Storage.Violations()
	if err != nil {
		violations = []models.Violation{}
	}
	broadcasts, err := h.Broadcast.History()
	if err != nil {
		broadcasts = []models.BroadcastEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"botStatus": h.Sender.Status(),
		"uptime":    time.Since(h.StartedAt).Round(time.Second).String(),
		"serverLogs": log.Recent(),
		"metrics": gin.H{
			"totalUsers":    len(users),
			"activeToday":   activeToday,
			"totalChats24h": chats24h,
			"banned":        banned,
		},
		"anonChat":     gin.H{"waiting": waiting, "active": pairs},
		"users":        users,
		"violations":   violations,
		"analytics":    h.Analysis.Calculate(),
		"settings":     h.Settings.Snapshot(),
		"broadcastLog": broadcasts,
	})
}

// ChatLog returns the persisted transcript of one room.
func (h *Handler) ChatLog(c *gin.Context) {
	entries, err := h.Storage.TranscriptFor(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Gagal membaca log chat."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "log": entries})
}

// UserDetail returns one user plus every violation they appear in.
func (h *Handler) UserDetail(c *gin.Context) {
	id := c.Param("id")
	user, ok := h.Users.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User tidak ditemukan."})
		return
	}

	involved := make([]models.Violation, 0)
	if violations, err := h.Storage.Violations(); err == nil {
		for _, v := range violations {
			if v.Involves(id) {
				involved = append(involved, v)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "violations": involved})
}
