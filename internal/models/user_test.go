package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anonychat/backend/internal/models"
)

// TestDeriveNickname verifies the default nicknames cut from transport ids.
func TestDeriveNickname(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"whatsapp style id", "628123456789@c.us", "628123456789"},
		{"telegram numeric id", "123456789", "123456789"},
		{"colon separated id", "acct:42", "acct"},
		{"empty id", "", ""},
		{"separator first", "@c.us", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.DeriveNickname(tt.id))
		})
	}
}

func TestMediaTag(t *testing.T) {
	assert.Equal(t, "[Media: image]", models.MediaTag(models.MediaImage))
	assert.Equal(t, "[Media: sticker]", models.MediaTag(models.MediaSticker))
	assert.Equal(t, "[Media: video]", models.MediaTag(models.MediaVideo))
}

func TestViolationInvolves(t *testing.T) {
	profanity := models.Violation{Type: models.ViolationProfanity, UserID: "a@c.us"}
	assert.True(t, profanity.Involves("a@c.us"))
	assert.False(t, profanity.Involves("b@c.us"))

	report := models.Violation{Type: models.ViolationReport, ReporterID: "a@c.us", ReportedID: "b@c.us"}
	assert.True(t, report.Involves("a@c.us"))
	assert.True(t, report.Involves("b@c.us"))
	assert.False(t, report.Involves("c@c.us"))
}
