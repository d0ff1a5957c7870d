package handler

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type keyLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*keyLimiter
	r     rate.Limit
	burst int
	ttl   time.Duration
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if kl, ok := p.m[key]; ok {
		kl.seen = time.Now()
		return kl.lim
	}
	lim := rate.NewLimiter(p.r, p.burst)
	p.m[key] = &keyLimiter{lim: lim, seen: time.Now()}
	return lim
}

func (p *limiterPool) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		p.mu.Lock()
		for k, v := range p.m {
			if now.Sub(v.seen) > p.ttl {
				delete(p.m, k)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimit is a per-IP token bucket middleware. Stale buckets are collected
// after two minutes of silence.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	pool := &limiterPool{m: make(map[string]*keyLimiter), r: r, burst: burst, ttl: 2 * time.Minute}
	go pool.gc()
	return func(c *gin.Context) {
		ip := c.Request.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !pool.get(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
