// Package moderation enforces the community rules inside active sessions:
// profanity strikes with an automatic ban on the third hit, and user-filed
// reports that capture a transcript snapshot for admin review.
package moderation

import (
	"strings"
	"sync"
)

// Filter matches messages against the configured badword list. Matching is
// whole-token: the message is lowercased and split on whitespace, and a hit
// requires an exact token match, so substrings inside longer words pass.
type Filter struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// NewFilter creates a filter with an empty word list.
func NewFilter() *Filter {
	return &Filter{words: make(map[string]struct{})}
}

// Reload replaces the word list. Called whenever the badword settings change.
func (f *Filter) Reload(words []string) {
	next := make(map[string]struct{}, len(words))
	for _, w := range words {
		next[strings.ToLower(w)] = struct{}{}
	}
	f.mu.Lock()
	f.words = next
	f.mu.Unlock()
}

// Check reports whether any token of the message is a listed badword.
func (f *Filter) Check(text string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, token := range strings.Fields(strings.ToLower(text)) {
		if _, hit := f.words[token]; hit {
			return true
		}
	}
	return false
}
