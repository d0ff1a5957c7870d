package moderation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anonychat/backend/internal/moderation"
)

func TestFilter_WholeTokenMatching(t *testing.T) {
	filter := moderation.NewFilter()
	filter.Reload([]string{"anjing", "babi"})

	tests := []struct {
		name string
		text string
		hit  bool
	}{
		{"exact word", "anjing", true},
		{"word inside sentence", "kamu anjing ya", true},
		{"uppercase input", "KAMU ANJING", true},
		{"substring does not match", "anjingan", false},
		{"prefix does not match", "babitua", false},
		{"clean sentence", "halo apa kabar", false},
		{"empty message", "", false},
		{"second listed word", "dasar babi", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hit, filter.Check(tt.text))
		})
	}
}

func TestFilter_ReloadReplacesList(t *testing.T) {
	filter := moderation.NewFilter()
	filter.Reload([]string{"anjing"})
	assert.True(t, filter.Check("anjing"))

	filter.Reload([]string{"babi"})

	assert.False(t, filter.Check("anjing"), "removed words stop matching")
	assert.True(t, filter.Check("babi"))
}

func TestFilter_ReloadLowercasesWords(t *testing.T) {
	filter := moderation.NewFilter()
	filter.Reload([]string{"ANJING"})

	assert.True(t, filter.Check("anjing"))
}

func TestFilter_EmptyListMatchesNothing(t *testing.T) {
	filter := moderation.NewFilter()

	assert.False(t, filter.Check("anjing"))
}
