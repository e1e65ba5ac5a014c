// Package ratelimit implements a per-client token bucket limiter.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client key and forgets clients that have
// been idle for longer than the stale period.
type Limiter struct {
	mu         sync.Mutex
	clients    map[string]*client
	rate       rate.Limit
	burst      int
	staleAfter time.Duration
	now        func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a Limiter allowing rps requests per second per client with the
// given burst. A background sweep evicts clients idle for staleAfter.
func New(rps float64, burst int, staleAfter time.Duration) (*Limiter, error) {
	if rps <= 0 || math.IsInf(rps, 0) || math.IsNaN(rps) {
		return nil, fmt.Errorf("ratelimit: rps must be a positive number, got %v", rps)
	}
	if burst <= 0 {
		return nil, fmt.Errorf("ratelimit: burst must be positive, got %d", burst)
	}
	if staleAfter <= 0 {
		return nil, fmt.Errorf("ratelimit: stale_after must be positive, got %v", staleAfter)
	}

	l := &Limiter{
		clients:    make(map[string]*client),
		rate:       rate.Limit(rps),
		burst:      burst,
		staleAfter: staleAfter,
		now:        time.Now,
		done:       make(chan struct{}),
	}
	go l.cleanupLoop(staleAfter / 2)
	return l, nil
}

// Allow consumes a token for key. When the bucket is empty it returns false
// and the whole number of seconds until a token is available, at least 1.
func (l *Limiter) Allow(key string) (bool, int) {
	lim := l.get(key)
	now := l.now()

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 1
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, max(1, int(math.Ceil(delay.Seconds())))
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close stops the background sweep. It is safe to call more than once.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = l.now()
	return c.limiter
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.staleAfter {
			delete(l.clients, key)
		}
	}
}
