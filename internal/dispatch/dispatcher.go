// Package dispatch routes every inbound transport message through the gate
// chain and into the matching command or session handler. Gates run in a
// fixed order: broadcast noise, development mode, maintenance mode, ban
// check, active session, then out-of-session commands.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/chathub"
	"anonychat/backend/internal/config"
	"anonychat/backend/internal/metrics"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/moderation"
	"anonychat/backend/internal/settings"
	"anonychat/backend/internal/transcript"
	"anonychat/backend/internal/userstore"
)

// broadcastNoiseID is the pseudo-sender transports use for status fanout.
// Nothing from it is ever processed.
const broadcastNoiseID = "status@broadcast"

const (
	maintenanceNotice = "🙏 Maaf, bot sedang dalam mode perbaikan. Coba lagi beberapa saat ya!"

	stopOwnNotice     = "Kamu memilih untuk udahan. Sampai jumpa di obrolan lainnya! Ketik *!chat* lagi yuk! 👋"
	stopPartnerNotice = "Partner kamu pamit duluan. Jangan sedih, yuk cari teman baru dengan ketik *!chat*! ✨"

	mediaInTransit = "⏳ _Sabar ya, medianya lagi OTW ke partner kamu..._"
	mediaFailed    = "Yah, maaf banget, medianya gagal terkirim. 😥 Coba lagi deh."

	alreadyQueued  = "Sabar yaa, kamu udah masuk antrian kok. Aku lagi cariin teman ngobrol yang paling pas buatmu! 🕵️‍♀️"
	selfPairNotice = "Waduh, hampir aja kamu ngobrol sama diri sendiri! Aku cariin yang lain ya. 😄"
	queuedNotice   = "Oke, kamu masuk antrian pertama! Aku lagi putar-putar cariin partner buatmu. Ditunggu ya! 🚀"
	matchedOwn     = "Asiiik, dapet temen baru! 🎉 Selamat ngobrol ya! Kalau mau udahan, ketik *!stop*."
	matchedPartner = "Yeay, ada yang mau ngobrol sama kamu nih! 🎉 Selamat bersenang-senang! Kalau mau udahan, ketik *!stop*."

	cancelDone    = "Oke, pencarian dibatalkan. Kalau kangen, panggil aku lagi dengan *!chat* ya!"
	nothingToStop = "Hmm, kamu kan lagi nggak di dalam obrolan atau antrian. Mau coba cari teman dengan *!chat*? 😉"

	stickerWorking      = "Siap! Stikernya lagi dibikin, tunggu bentar ya..."
	stickerFailed       = "Aduh, maaf, ada sedikit gangguan teknis pas bikin stiker. Coba lagi ya?"
	stickerNeedsImage   = "Eits, kirim gambarnya dulu dong baru kasih caption *!stiker* biar jadi stiker. ✨"
	stickerGifWorking   = "🎥 Wow, stiker gerak! Oke, aku proses dulu ya, ini butuh waktu sedikit lebih lama..."
	stickerGifFailed    = "Yah, gagal nih bikin stiker geraknya. Coba pake video lain yang lebih pendek (maks 7 detik) ya."
	stickerNeedsVideo   = "Kirim video/GIF (maks 7 detik) dengan caption *!stikergif* ya buat bikin stiker gerak."
	stickerAuthorCredit = "AnonyChat Bot"
)

// Sender delivers outbound messages to the transport.
type Sender interface {
	Send(out models.Outbound) error
}

// Converter turns inbound media into a sticker file.
type Converter interface {
	Convert(ctx context.Context, in models.Media, animated bool) (models.Media, func(), error)
}

// Dispatcher owns the message routing. All collaborators are goroutine-safe,
// so Handle may be called concurrently for different updates.
type Dispatcher struct {
	AdminID    string
	OperatorID string

	Hub      *chathub.Hub
	Users    *userstore.Store
	Settings *settings.Service
	Filter   *moderation.Filter
	Engine   *moderation.Engine
	Recorder *transcript.Recorder
	Stickers Converter
	Sender   Sender

	// greetPause separates the one-time rules message from the menu.
	greetPause time.Duration
}

// New wires a dispatcher with the production greeting cadence.
func New(cfg config.Config, hub *chathub.Hub, users *userstore.Store, st *settings.Service,
	filter *moderation.Filter, engine *moderation.Engine, rec *transcript.Recorder,
	stickers Converter, sender Sender) *Dispatcher {
	return &Dispatcher{
		AdminID:    cfg.AdminID,
		OperatorID: cfg.OperatorID,
		Hub:        hub,
		Users:      users,
		Settings:   st,
		Filter:     filter,
		Engine:     engine,
		Recorder:   rec,
		Stickers:   stickers,
		Sender:     sender,
		greetPause: time.Second,
	}
}

// Handle routes one inbound message. It never returns an error: every
// failure mode ends in a user-facing notice or a log line, and the transport
// loop moves on to the next update regardless.
func (d *Dispatcher) Handle(ctx context.Context, in models.Inbound) {
	if in.SenderID == broadcastNoiseID {
		return
	}

	if d.Settings.DevelopmentMode() && in.SenderID != d.OperatorID {
		d.reply(in.SenderID, d.Settings.DevelopmentMessage())
		return
	}
	if d.Settings.MaintenanceMode() && in.SenderID != d.AdminID {
		d.reply(in.SenderID, maintenanceNotice)
		return
	}

	user := d.Users.Touch(in.SenderID)
	if d.Users.IsBanned(user.ID) {
		admin := d.AdminID
		if admin == "" {
			admin = "owner"
		}
		d.reply(user.ID, fmt.Sprintf("Waduh, %s.. Akunmu sepertinya harus istirahat dulu karena ter-banned. 😬\n\nKalau kamu merasa ini sebuah kesalahan, coba deh ngobrol baik-baik sama admin di nomor %s ya.", user.Nickname, admin))
		return
	}

	text := strings.TrimSpace(in.Text)
	lower := strings.ToLower(text)

	if sess, ok := d.Hub.SessionFor(user.ID); ok {
		d.handleInSession(sess, user, in, text, lower)
		return
	}
	d.handleCommand(ctx, user, in, lower)
}

func (d *Dispatcher) handleInSession(sess chathub.Session, user models.User, in models.Inbound, text, lower string) {
	switch lower {
	case "!stop", "!skip":
		d.reply(user.ID, stopOwnNotice)
		d.reply(sess.PartnerID, stopPartnerNotice)
		if ended, err := d.Hub.Teardown(user.ID); err == nil {
			d.Recorder.Release(ended.RoomID)
		}
		return
	case "!lapor":
		d.Engine.HandleReport(sess, user)
		return
	}

	if in.Media != nil {
		d.forwardMedia(sess, user, in)
		return
	}

	if d.Filter.Check(text) {
		d.Engine.HandleProfanity(sess, user, text)
		return
	}

	if text == "" {
		return
	}
	d.Recorder.Record(models.TranscriptEntry{
		RoomID:         sess.RoomID,
		Timestamp:      time.Now(),
		SenderID:       user.ID,
		SenderNickname: user.Nickname,
		Message:        text,
		FromInitiator:  sess.Initiator,
	})
	if err := d.Sender.Send(models.Outbound{To: sess.PartnerID, Text: text}); err != nil {
		log.Warn().Err(err).Str("room", sess.RoomID).Msg("text forward failed")
		return
	}
	metrics.MessagesTotal.WithLabelValues("forwarded").Inc()
}

// forwardMedia relays media by reference, preserving the kind, the caption
// and sticker-ness. The transcript records a media tag, never the payload.
func (d *Dispatcher) forwardMedia(sess chathub.Session, user models.User, in models.Inbound) {
	d.reply(user.ID, mediaInTransit)
	d.Recorder.Record(models.TranscriptEntry{
		RoomID:         sess.RoomID,
		Timestamp:      time.Now(),
		SenderID:       user.ID,
		SenderNickname: user.Nickname,
		Message:        models.MediaTag(in.Media.Kind),
		FromInitiator:  sess.Initiator,
	})
	out := models.Outbound{
		To:        sess.PartnerID,
		Media:     in.Media,
		Caption:   in.Text,
		AsSticker: in.Media.Kind == models.MediaSticker,
	}
	if err := d.Sender.Send(out); err != nil {
		log.Warn().Err(err).Str("room", sess.RoomID).Msg("media forward failed")
		d.reply(user.ID, mediaFailed)
		return
	}
	metrics.MessagesTotal.WithLabelValues("media").Inc()
}

func (d *Dispatcher) handleCommand(ctx context.Context, user models.User, in models.Inbound, lower string) {
	command := lower
	if i := strings.IndexByte(lower, ' '); i >= 0 {
		command = lower[:i]
	}

	for _, alias := range config.GreetingAliases {
		if command == alias {
			d.greet(user)
			return
		}
	}

	switch command {
	case "!chat":
		d.requestMatch(user)
	case "!stop":
		if err := d.Hub.Cancel(user.ID); err != nil {
			d.reply(user.ID, nothingToStop)
			return
		}
		d.reply(user.ID, cancelDone)
	case "!stiker":
		d.makeSticker(ctx, user, in)
	case "!stikergif":
		d.makeAnimatedSticker(ctx, user, in)
	}
	// Anything else outside a session is silently ignored.
}

// greet shows the rules once per user, then the personalised menu.
func (d *Dispatcher) greet(user models.User) {
	if !user.SeenRules {
		d.reply(user.ID, d.Settings.WelcomeMessage())
		d.Users.MarkRulesSeen(user.ID)
		time.Sleep(d.greetPause)
	}
	d.reply(user.ID, d.Settings.MenuMessage(user.Nickname))
}

func (d *Dispatcher) requestMatch(user models.User) {
	result, err := d.Hub.RequestMatch(user.ID)
	switch err {
	case nil:
	case chathub.ErrAlreadyQueued:
		d.reply(user.ID, alreadyQueued)
		return
	case chathub.ErrNoPartner:
		d.reply(user.ID, selfPairNotice)
		return
	default:
		log.Warn().Err(err).Str("user", user.ID).Msg("match request rejected")
		return
	}

	if result.Queued {
		d.reply(user.ID, queuedNotice)
		return
	}
	sess := result.Session
	d.Users.IncChatCount(sess.UserID)
	d.Users.IncChatCount(sess.PartnerID)
	d.reply(sess.UserID, matchedOwn)
	d.reply(sess.PartnerID, matchedPartner)
	log.Info().Str("room", sess.RoomID).Msg("session started")
}

func (d *Dispatcher) makeSticker(ctx context.Context, user models.User, in models.Inbound) {
	// Any attached media is fair game; the converter grabs a single frame.
	if in.Media == nil {
		d.reply(user.ID, stickerNeedsImage)
		return
	}
	d.reply(user.ID, stickerWorking)

	media, cleanup, err := d.Stickers.Convert(ctx, *in.Media, false)
	if err != nil {
		d.reply(user.ID, stickerFailed)
		return
	}
	defer cleanup()

	d.sendSticker(user, media, fmt.Sprintf("Stiker by %s", user.Nickname))
}

func (d *Dispatcher) makeAnimatedSticker(ctx context.Context, user models.User, in models.Inbound) {
	animatable := in.Media != nil &&
		(in.Media.Kind == models.MediaVideo || strings.Contains(in.Media.MimeType, "gif"))
	if !animatable {
		d.reply(user.ID, stickerNeedsVideo)
		return
	}
	d.reply(user.ID, stickerGifWorking)

	media, cleanup, err := d.Stickers.Convert(ctx, *in.Media, true)
	if err != nil {
		d.reply(user.ID, stickerGifFailed)
		return
	}
	defer cleanup()

	d.sendSticker(user, media, fmt.Sprintf("Animasi by %s", user.Nickname))
}

func (d *Dispatcher) sendSticker(user models.User, media models.Media, name string) {
	out := models.Outbound{
		To:            user.ID,
		Media:         &media,
		AsSticker:     true,
		StickerName:   name,
		StickerAuthor: stickerAuthorCredit,
	}
	if err := d.Sender.Send(out); err != nil {
		log.Warn().Err(err).Str("user", user.ID).Msg("sticker delivery failed")
		d.reply(user.ID, stickerFailed)
	}
}

func (d *Dispatcher) reply(to, text string) {
	if err := d.Sender.Send(models.Outbound{To: to, Text: text}); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("reply delivery failed")
	}
}
