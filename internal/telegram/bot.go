// Package telegram adapts the Telegram Bot API to the transport-neutral
// message types the dispatcher works with. It owns the long-poll update loop
// and the outbound send path; everything else lives behind the dispatcher.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/models"
)

// Handler consumes inbound messages. Implemented by the dispatcher.
type Handler interface {
	Handle(ctx context.Context, in models.Inbound)
}

// Connection states reported on the dashboard.
const (
	StatusInitializing = "INITIALIZING"
	StatusConnected    = "CONNECTED"
	StatusDisconnected = "DISCONNECTED"
)

// Bot wraps the Telegram client. Safe for concurrent Send calls.
type Bot struct {
	api    *tgbotapi.BotAPI
	status atomic.Value
}

// NewBot authenticates against the Bot API.
func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = false
	log.Info().Str("account", api.Self.UserName).Msg("telegram bot authorized")
	b := &Bot{api: api}
	b.status.Store(StatusInitializing)
	return b, nil
}

// Status reports the current connection state.
func (b *Bot) Status() string {
	return b.status.Load().(string)
}

// Run long-polls for updates and hands each message to the handler in its
// own goroutine, so one slow conversation never blocks the loop. Returns
// when the context is cancelled.
func (b *Bot) Run(ctx context.Context, h Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.status.Store(StatusConnected)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		in := toInbound(update.Message)
		go h.Handle(ctx, in)
	}
	b.status.Store(StatusDisconnected)
	log.Info().Msg("telegram update loop stopped")
}

// toInbound maps a Telegram message onto the neutral inbound shape. Photos,
// stickers, videos and GIF animations become media references; any other
// attachment type is dropped and only the caption survives.
func toInbound(msg *tgbotapi.Message) models.Inbound {
	in := models.Inbound{
		SenderID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:     msg.Text,
	}
	if in.Text == "" {
		in.Text = msg.Caption
	}

	switch {
	case len(msg.Photo) > 0:
		largest := msg.Photo[len(msg.Photo)-1]
		in.Media = &models.Media{Kind: models.MediaImage, FileID: largest.FileID}
	case msg.Sticker != nil:
		in.Media = &models.Media{Kind: models.MediaSticker, FileID: msg.Sticker.FileID}
	case msg.Video != nil:
		in.Media = &models.Media{Kind: models.MediaVideo, FileID: msg.Video.FileID, MimeType: msg.Video.MimeType}
	case msg.Animation != nil:
		in.Media = &models.Media{Kind: models.MediaVideo, FileID: msg.Animation.FileID, MimeType: "image/gif"}
	}
	return in
}

// Send delivers one outbound message. Media is forwarded by file id when
// possible; freshly generated stickers upload from their local path.
func (b *Bot) Send(out models.Outbound) error {
	chatID, err := strconv.ParseInt(out.To, 10, 64)
	if err != nil {
		return fmt.Errorf("bad recipient id %q: %w", out.To, err)
	}

	if out.Media == nil {
		msg := tgbotapi.NewMessage(chatID, out.Text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		_, err := b.api.Send(msg)
		return err
	}

	var file tgbotapi.RequestFileData
	if out.Media.LocalPath != "" {
		file = tgbotapi.FilePath(out.Media.LocalPath)
	} else {
		file = tgbotapi.FileID(out.Media.FileID)
	}

	var c tgbotapi.Chattable
	switch {
	case out.AsSticker || out.Media.Kind == models.MediaSticker:
		c = tgbotapi.NewSticker(chatID, file)
	case out.Media.Kind == models.MediaVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = out.Caption
		c = video
	default:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = out.Caption
		c = photo
	}
	_, err = b.api.Send(c)
	return err
}

// DownloadFile fetches a transport file to a local path, for sticker
// conversion input.
func (b *Bot) DownloadFile(ctx context.Context, fileID, dest string) error {
	f, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Link(b.api.Token), nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch file: status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
