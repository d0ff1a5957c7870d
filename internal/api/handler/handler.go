// Package handler serves the admin dashboard API: status and analytics
// reads, moderation actions, broadcast control and the live log stream.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"anonychat/backend/internal/analysis"
	"anonychat/backend/internal/broadcast"
	"anonychat/backend/internal/chathub"
	"anonychat/backend/internal/config"
	"anonychat/backend/internal/metrics"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/settings"
	"anonychat/backend/internal/storage"
	"anonychat/backend/internal/userstore"
)

// Sender delivers admin-triggered notices to users and reports the
// transport connection state.
type Sender interface {
	Send(out models.Outbound) error
	Status() string
}

// Handler bundles everything the dashboard endpoints touch.
type Handler struct {
	Cfg       config.Config
	Hub       *chathub.Hub
	Users     *userstore.Store
	Settings  *settings.Service
	Analysis  *analysis.Service
	Broadcast *broadcast.Service
	Storage   storage.Storage
	Sender    Sender
	StartedAt time.Time
}

// NewHandler creates a handler; StartedAt feeds the uptime field.
func NewHandler(cfg config.Config, hub *chathub.Hub, users *userstore.Store,
	st *settings.Service, an *analysis.Service, bc *broadcast.Service,
	s storage.Storage, sender Sender) *Handler {
	return &Handler{
		Cfg:       cfg,
		Hub:       hub,
		Users:     users,
		Settings:  st,
		Analysis:  an,
		Broadcast: bc,
		Storage:   s,
		Sender:    sender,
		StartedAt: time.Now(),
	}
}

// Router builds the gin engine with all dashboard routes mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(h.Cfg.Env))
	r.Use(RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.POST("/api/login", h.Login)

	api := r.Group("/api", h.AuthRequired())
	{
		api.GET("/status", h.Status)
		api.GET("/chat-log/:roomId", h.ChatLog)
		api.GET("/user/:id", h.UserDetail)
		api.GET("/logs/ws", h.LogStream)

		api.POST("/broadcast", h.StartBroadcast)
		api.POST("/toggle-ban", h.ToggleBan)
		api.POST("/warn-user", h.WarnUser)
		api.POST("/settings/maintenance", h.SetMaintenance)
		api.POST("/settings/development", h.SetDevelopment)
		api.POST("/settings/messages", h.UpdateMessages)
		api.POST("/badwords/add", h.AddBadword)
		api.POST("/badwords/remove", h.RemoveBadword)
	}
	return r
}
