// Package rate throttles requests per key, e.g. login attempts per email.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	every   rate.Limit
	burst   int
	expiry  time.Duration
	clients map[string]*clientLimiter
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLimiter allows burst requests per key and one more every interval. Keys
// idle for longer than expiry are forgotten.
func NewLimiter(interval time.Duration, burst int, expiry time.Duration) *Limiter {
	lm := &Limiter{
		every:   rate.Every(interval),
		burst:   burst,
		expiry:  expiry,
		clients: make(map[string]*clientLimiter),
		stop:    make(chan struct{}),
	}
	go lm.refresh()
	return lm
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

// Stop ends the background eviction loop.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) refresh() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-tick.C:
		}

		l.mu.Lock()
		for key, v := range l.clients {
			if time.Since(v.lastAccess) > l.expiry {
				delete(l.clients, key)
			}
		}
		l.mu.Unlock()
	}
}
