package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/models"
)

const warnNotice = "🚨 Anda menerima peringatan dari admin karena perilaku yang tidak pantas. Pelanggaran selanjutnya dapat menyebabkan pemblokiran."

type userIDRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

type messagesRequest struct {
	Welcome     string `json:"welcome"`
	Menu        string `json:"menu"`
	Development string `json:"development"`
}

type badwordRequest struct {
	Word string `json:"word" binding:"required"`
}

// StartBroadcast accepts a multipart form with a message and an optional
// image, responds immediately and lets the broadcast service deliver in the
// background.
func (h *Handler) StartBroadcast(c *gin.Context) {
	message := c.PostForm("message")

	imagePath := ""
	if file, err := c.FormFile("image"); err == nil {
		imagePath = filepath.Join(h.Cfg.TempDir, fmt.Sprintf("broadcast_%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename)))
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			log.Error().Err(err).Msg("broadcast image save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Gagal menyimpan gambar."})
			return
		}
	}

	if message == "" && imagePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Pesan atau gambar tidak boleh kosong."})
		return
	}

	recipients := h.Broadcast.Start(context.Background(), message, imagePath)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Broadcast dimulai di background!", "recipients": recipients})
}

// ToggleBan flips a user's ban flag.
func (h *Handler) ToggleBan(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId wajib diisi."})
		return
	}
	banned, ok := h.Users.ToggleBan(req.UserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User tidak ditemukan."})
		return
	}
	verdict := "di-unban"
	if banned {
		verdict = "di-ban"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("User berhasil %s.", verdict), "banned": banned})
}

// WarnUser bumps the warning counter and pushes a notice to the user.
func (h *Handler) WarnUser(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId wajib diisi."})
		return
	}
	if _, ok := h.Users.Warn(req.UserID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User tidak ditemukan."})
		return
	}
	if err := h.Sender.Send(models.Outbound{To: req.UserID, Text: warnNotice}); err != nil {
		log.Warn().Err(err).Str("user", req.UserID).Msg("warn notice delivery failed")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Peringatan terkirim."})
}

// SetMaintenance toggles maintenance mode.
func (h *Handler) SetMaintenance(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "enabled wajib diisi."})
		return
	}
	h.Settings.SetMaintenanceMode(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Mode perbaikan %s.", enabledWord(req.Enabled))})
}

// SetDevelopment toggles development mode.
func (h *Handler) SetDevelopment(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "enabled wajib diisi."})
		return
	}
	h.Settings.SetDevelopmentMode(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Mode pengembangan %s.", enabledWord(req.Enabled))})
}

// UpdateMessages replaces the bot templates; empty fields keep the current
// value.
func (h *Handler) UpdateMessages(c *gin.Context) {
	var req messagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payload tidak valid."})
		return
	}
	h.Settings.UpdateMessages(req.Welcome, req.Menu, req.Development)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pesan bot diperbarui."})
}

// AddBadword extends the profanity list.
func (h *Handler) AddBadword(c *gin.Context) {
	var req badwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "word wajib diisi."})
		return
	}
	words := h.Settings.AddBadword(req.Word)
	c.JSON(http.StatusOK, gin.H{"success": true, "badwords": words})
}

// RemoveBadword shrinks the profanity list.
func (h *Handler) RemoveBadword(c *gin.Context) {
	var req badwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "word wajib diisi."})
		return
	}
	words := h.Settings.RemoveBadword(req.Word)
	c.JSON(http.StatusOK, gin.H{"success": true, "badwords": words})
}

func enabledWord(enabled bool) string {
	if enabled {
		return "diaktifkan"
	}
	return "dinonaktifkan"
}
