// Package broadcast delivers admin announcements to every non-banned user,
// fire-and-forget. Sends are paced with a random delay so the transport
// never sees a burst, and a single recipient failure never stops the run.
package broadcast

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/config"
	"anonychat/backend/internal/metrics"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
	"anonychat/backend/internal/userstore"
)

// Sender delivers outbound messages to the transport.
type Sender interface {
	Send(out models.Outbound) error
}

// Service runs broadcasts in the background. The recipient list is
// snapshotted when the run starts; users who join or get banned mid-run are
// unaffected.
type Service struct {
	Users   *userstore.Store
	Storage storage.Storage
	Sender  Sender

	// pace returns the delay before the next send.
	pace func() time.Duration
}

// NewService wires a broadcast service with the production pacing.
func NewService(users *userstore.Store, s storage.Storage, sender Sender) *Service {
	return &Service{
		Users:   users,
		Storage: s,
		Sender:  sender,
		pace: func() time.Duration {
			return config.BroadcastDelayMin +
				time.Duration(rand.Int63n(int64(config.BroadcastDelayMax-config.BroadcastDelayMin)))
		},
	}
}

// Start records the broadcast and launches the delivery goroutine. It
// returns the recipient count immediately; delivery continues until done or
// the context is cancelled.
func (s *Service) Start(ctx context.Context, message, imagePath string) int {
	recipients := s.Users.NotBanned()

	entry := models.BroadcastEntry{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Message:   message,
		ImageFile: imagePath,
		SentTo:    len(recipients),
	}
	if err := s.Storage.AppendBroadcast(&entry); err != nil {
		log.Error().Err(err).Msg("broadcast log write failed")
	}

	go s.run(ctx, recipients, message, imagePath)
	return len(recipients)
}

func (s *Service) run(ctx context.Context, recipients []string, message, imagePath string) {
	log.Info().Int("recipients", len(recipients)).Msg("broadcast started")
	if imagePath != "" {
		// The image is an upload staged in the temp dir; drop it once the
		// run ends, finished or cancelled.
		defer func() {
			if err := os.Remove(imagePath); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("file", imagePath).Msg("broadcast image cleanup failed")
			}
		}()
	}

	date := time.Now().Format("Monday, 2 January 2006")
	body := fmt.Sprintf("%s\n\n---\n*Pesan Otomatis* | %s", message, date)

	var media *models.Media
	if imagePath != "" {
		media = &models.Media{Kind: models.MediaImage, LocalPath: imagePath}
	}

	sent := 0
	for _, to := range recipients {
		out := models.Outbound{To: to, Text: body}
		if media != nil {
			out = models.Outbound{To: to, Media: media, Caption: body}
		}
		if err := s.Sender.Send(out); err != nil {
			metrics.BroadcastSendsTotal.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("to", to).Msg("broadcast send failed, continuing")
		} else {
			metrics.BroadcastSendsTotal.WithLabelValues("ok").Inc()
			sent++
		}

		select {
		case <-ctx.Done():
			log.Info().Int("sent", sent).Msg("broadcast cancelled")
			return
		case <-time.After(s.pace()):
		}
	}
	log.Info().Int("sent", sent).Int("recipients", len(recipients)).Msg("broadcast finished")
}

// History returns past broadcasts for the dashboard.
func (s *Service) History() ([]models.BroadcastEntry, error) {
	return s.Storage.Broadcasts()
}
