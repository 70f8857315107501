// Package ratelimit implements the per-connection leaky-bucket
// approximations from spec §4.5, keyed by socketId. Buckets live in a
// process-global map written only by the gateway, mirroring the teacher's
// ambient-per-module-map pattern (spec §9) and grounded on
// game/types.go's Player.rateLimiter rate.Limiter field.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Kind distinguishes the two bucket classes spec §4.5 defines.
type Kind int

const (
	Draw Kind = iota
	ChatOrGuess
)

// limits: draw allows 50 per rolling 5s window; chat/guess allows 10 per
// rolling 60s window. golang.org/x/time/rate models a rolling window as a
// refill rate plus a burst size equal to the window's quota.
var limitFor = map[Kind]rate.Limit{
	Draw:        rate.Every(5 * time.Second / 50),
	ChatOrGuess: rate.Every(60 * time.Second / 10),
}

var burstFor = map[Kind]int{
	Draw:        50,
	ChatOrGuess: 10,
}

// Limiter owns one bucket pair per connected socket.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]map[Kind]*rate.Limiter
}

// New returns an empty process-global limiter.
func New() *Limiter {
	return &Limiter{buckets: make(map[string]map[Kind]*rate.Limiter)}
}

// Allow reports whether socketID may perform one more event of kind,
// lazily creating its bucket on first use.
func (l *Limiter) Allow(socketID string, kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	perSocket, ok := l.buckets[socketID]
	if !ok {
		perSocket = make(map[Kind]*rate.Limiter)
		l.buckets[socketID] = perSocket
	}
	b, ok := perSocket[kind]
	if !ok {
		b = rate.NewLimiter(limitFor[kind], burstFor[kind])
		perSocket[kind] = b
	}
	return b.Allow()
}

// Release drops all buckets for socketID. Called when the socket
// disconnects; deleting a room does not call it, so buckets of a deleted
// room's sockets stay until they disconnect or Sweep drops them.
func (l *Limiter) Release(socketID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, socketID)
}

// Sweep removes buckets for any socketID not present in liveSockets. Run
// every 5 minutes per spec §4.4 "A separate sweeper garbage-collects
// expired rate-limit buckets every 5 minutes."
func (l *Limiter) Sweep(liveSockets map[string]struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for socketID := range l.buckets {
		if _, ok := liveSockets[socketID]; !ok {
			delete(l.buckets, socketID)
		}
	}
}

// Count reports the number of tracked sockets; exposed for tests.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
