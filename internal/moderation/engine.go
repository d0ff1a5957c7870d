package moderation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/chathub"
	"anonychat/backend/internal/config"
	"anonychat/backend/internal/metrics"
	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
	"anonychat/backend/internal/transcript"
	"anonychat/backend/internal/userstore"
)

const (
	autoBanNotice = "❌ *ANDA TELAH DI-BANNED OTOMATIS*\n\nAnda telah terdeteksi menggunakan kata kasar sebanyak 3 kali dalam sesi chat ini. Akses Anda ke bot telah dicabut."
	partnerBanned = "Sesi chat telah dihentikan oleh sistem karena partner Anda melanggar aturan komunitas."

	reportAccepted = "🚨 Laporanmu sudah kami terima dan akan segera dicek sama admin. Terima kasih sudah membantu menjaga komunitas kita tetap aman! Sesi chat ini dihentikan."
	reportedNotice = "Sesi chat dihentikan oleh sistem karena ada laporan. Tim admin akan meninjaunya."
)

// Sender delivers outbound messages to the transport.
type Sender interface {
	Send(out models.Outbound) error
}

// Engine applies moderation consequences: it records violations, counts
// strikes, bans repeat offenders and ends the sessions involved.
type Engine struct {
	Hub      *chathub.Hub
	Users    *userstore.Store
	Recorder *transcript.Recorder
	Storage  storage.Storage
	Sender   Sender
}

// NewEngine wires an engine from its collaborators.
func NewEngine(hub *chathub.Hub, users *userstore.Store, rec *transcript.Recorder, s storage.Storage, sender Sender) *Engine {
	return &Engine{Hub: hub, Users: users, Recorder: rec, Storage: s, Sender: sender}
}

// HandleProfanity processes a message that tripped the filter. The message is
// never forwarded. Strikes one and two record a violation and warn the
// sender; the third strike bans the sender permanently and ends the session
// for both sides.
func (e *Engine) HandleProfanity(sess chathub.Session, user models.User, text string) {
	strikes, err := e.Hub.AddStrike(user.ID)
	if err != nil {
		log.Warn().Err(err).Str("user", user.ID).Msg("strike counter lost, session already gone")
		return
	}
	metrics.MessagesTotal.WithLabelValues("blocked").Inc()

	if strikes >= config.StrikeLimit {
		e.Users.SetBanned(user.ID, true)
		metrics.BansTotal.Inc()
		e.reply(user.ID, autoBanNotice)
		e.reply(sess.PartnerID, partnerBanned)
		if ended, err := e.Hub.Teardown(user.ID); err == nil {
			e.Recorder.Release(ended.RoomID)
		}
		log.Info().Str("user", user.ID).Str("room", sess.RoomID).Msg("auto-ban after third profanity strike")
		return
	}

	v := models.Violation{
		ID:        uuid.New().String(),
		Type:      models.ViolationProfanity,
		RoomID:    sess.RoomID,
		CreatedAt: time.Now(),
		UserID:    user.ID,
		Nickname:  user.Nickname,
		Message:   text,
	}
	if err := e.Storage.AppendViolation(&v); err != nil {
		log.Error().Err(err).Str("room", sess.RoomID).Msg("violation write failed")
	}
	metrics.ViolationsTotal.WithLabelValues(models.ViolationProfanity).Inc()
	e.reply(user.ID, fmt.Sprintf("Pssst... jaga ucapannya ya. Peringatan (%d/3). Pelanggaran selanjutnya akan menyebabkan ban permanen. 😉", strikes))
}

// HandleReport files a report against the reporter's current partner. The
// last transcript entries are snapshotted into the violation record and the
// session ends for both sides. Reports never ban anyone; they queue evidence
// for an admin decision.
func (e *Engine) HandleReport(sess chathub.Session, reporter models.User) {
	reported := e.Users.Touch(sess.PartnerID)

	snapshot, err := json.Marshal(e.Recorder.Tail(sess.RoomID))
	if err != nil {
		log.Error().Err(err).Str("room", sess.RoomID).Msg("transcript snapshot marshal failed")
		snapshot = []byte("[]")
	}

	v := models.Violation{
		ID:               uuid.New().String(),
		Type:             models.ViolationReport,
		RoomID:           sess.RoomID,
		CreatedAt:        time.Now(),
		ReporterID:       reporter.ID,
		ReporterNickname: reporter.Nickname,
		ReportedID:       reported.ID,
		ReportedNickname: reported.Nickname,
		Snapshot:         string(snapshot),
	}
	if err := e.Storage.AppendViolation(&v); err != nil {
		log.Error().Err(err).Str("room", sess.RoomID).Msg("report write failed")
	}
	metrics.ViolationsTotal.WithLabelValues(models.ViolationReport).Inc()

	if ended, err := e.Hub.Teardown(reporter.ID); err == nil {
		e.Recorder.Release(ended.RoomID)
	}
	e.reply(reporter.ID, reportAccepted)
	e.reply(sess.PartnerID, reportedNotice)
	log.Info().Str("room", sess.RoomID).Str("reported", reported.ID).Msg("user report filed")
}

func (e *Engine) reply(to, text string) {
	if err := e.Sender.Send(models.Outbound{To: to, Text: text}); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("notice delivery failed")
	}
}
