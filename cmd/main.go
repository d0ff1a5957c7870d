// Command anonychat runs the bot: the transport update loop, the matchmaker
// and moderation core, and the admin dashboard API in one process.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"anonychat/backend/internal/analysis"
	"anonychat/backend/internal/api/handler"
	"anonychat/backend/internal/broadcast"
	"anonychat/backend/internal/chathub"
	"anonychat/backend/internal/config"
	"anonychat/backend/internal/dispatch"
	applog "anonychat/backend/internal/log"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/moderation"
	"anonychat/backend/internal/settings"
	"anonychat/backend/internal/sticker"
	"anonychat/backend/internal/storage"
	"anonychat/backend/internal/telegram"
	"anonychat/backend/internal/transcript"
	"anonychat/backend/internal/userstore"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Violation{},
		&models.TranscriptEntry{},
		&models.Settings{},
		&models.BroadcastEntry{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	log.Info().Msg("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	// A missing .env is fine in containers where the environment is
	// injected directly.
	_ = godotenv.Load()
	cfg := config.Load()
	applog.Init(cfg.Env)
	log.Info().Msg("starting AnonyChat backend")

	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is not set")
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	settingsSvc, err := settings.New(s)
	if err != nil {
		log.Fatal().Err(err).Msg("settings load failed")
	}
	users := userstore.New(s)

	hub := chathub.New(s, cfg.RoomIDPrefix)
	hub.RestoreActiveRooms()

	recorder := transcript.NewRecorder(s)

	bot, err := telegram.NewBot(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram bot start failed")
	}

	filter := moderation.NewFilter()
	settingsSvc.SetBadwordsChanged(filter.Reload)
	engine := moderation.NewEngine(hub, users, recorder, s, bot)

	converter, err := sticker.NewConverter(cfg.TempDir, bot)
	if err != nil {
		log.Fatal().Err(err).Msg("temp dir setup failed")
	}

	dispatcher := dispatch.New(cfg, hub, users, settingsSvc, filter, engine, recorder, converter, bot)

	broadcastSvc := broadcast.NewService(users, s, bot)
	analysisSvc := analysis.NewService(users, s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go bot.Run(ctx, dispatcher)

	h := handler.NewHandler(cfg, hub, users, settingsSvc, analysisSvc, broadcastSvc, s, bot)
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        h.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("dashboard API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
}
