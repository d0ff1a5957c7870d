// Package log configures the global zerolog logger and keeps an in-memory
// ring of recent entries for the dashboard's server-log panel.
package log

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/config"
)

// Entry is one captured log line as shown on the dashboard.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type ring struct {
	mu      sync.Mutex
	entries []Entry
	subs    map[chan Entry]struct{}
}

var buffer = &ring{subs: make(map[chan Entry]struct{})}

// ringHook mirrors every emitted log line into the buffer.
type ringHook struct{}

func (ringHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if msg == "" {
		return
	}
	buffer.add(Entry{Timestamp: time.Now(), Message: msg})
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	if len(r.entries) > config.LogRingCapacity {
		r.entries = r.entries[len(r.entries)-config.LogRingCapacity:]
	}
	for ch := range r.subs {
		select {
		case ch <- e:
		default:
		}
	}
	r.mu.Unlock()
}

// Init sets up the global logger: console writer in dev, JSON otherwise.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	var logger zerolog.Logger
	if env == "dev" {
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(cw).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	log.Logger = logger.Hook(ringHook{})
}

// Recent returns the captured log tail, oldest first.
func Recent() []Entry {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	out := make([]Entry, len(buffer.entries))
	copy(out, buffer.entries)
	return out
}

// Subscribe registers a channel that receives every new entry. Slow
// subscribers drop entries instead of blocking the logger.
func Subscribe() chan Entry {
	ch := make(chan Entry, 16)
	buffer.mu.Lock()
	buffer.subs[ch] = struct{}{}
	buffer.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel registered with Subscribe.
func Unsubscribe(ch chan Entry) {
	buffer.mu.Lock()
	delete(buffer.subs, ch)
	buffer.mu.Unlock()
}
