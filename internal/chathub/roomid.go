package chathub

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// roomIDGenerator produces ids of the form <prefix><6-digit-random>, with the
// random part in [100000, 999999]. An id colliding with a currently active
// room is regenerated, so two live sessions can never share a transcript.
type roomIDGenerator struct {
	mu     sync.Mutex
	prefix string
	rng    *rand.Rand
}

func newRoomIDGenerator(prefix string) *roomIDGenerator {
	return &roomIDGenerator{
		prefix: prefix,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *roomIDGenerator) next(active map[string]struct{}) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		id := fmt.Sprintf("%s%06d", g.prefix, 100000+g.rng.Intn(900000))
		if _, taken := active[id]; !taken {
			return id
		}
	}
}
