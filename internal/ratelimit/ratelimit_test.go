package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow_WithinBurst(t *testing.T) {
	l := New()
	for i := 0; i < burstFor[ChatOrGuess]; i++ {
		assert.True(t, l.Allow("sock1", ChatOrGuess), "call %d should be allowed within burst", i)
	}
}

func TestLimiter_Allow_ExceedsBurst(t *testing.T) {
	l := New()
	for i := 0; i < burstFor[Draw]; i++ {
		l.Allow("sock1", Draw)
	}
	assert.False(t, l.Allow("sock1", Draw))
}

func TestLimiter_Allow_SeparateBucketsPerKind(t *testing.T) {
	l := New()
	for i := 0; i < burstFor[Draw]; i++ {
		l.Allow("sock1", Draw)
	}
	assert.False(t, l.Allow("sock1", Draw))
	assert.True(t, l.Allow("sock1", ChatOrGuess))
}

func TestLimiter_Allow_SeparateBucketsPerSocket(t *testing.T) {
	l := New()
	for i := 0; i < burstFor[Draw]; i++ {
		l.Allow("sock1", Draw)
	}
	assert.True(t, l.Allow("sock2", Draw))
}

func TestLimiter_Release(t *testing.T) {
	l := New()
	l.Allow("sock1", Draw)
	assert.Equal(t, 1, l.Count())
	l.Release("sock1")
	assert.Equal(t, 0, l.Count())
}

func TestLimiter_Sweep_DropsDeadSockets(t *testing.T) {
	l := New()
	l.Allow("sock1", Draw)
	l.Allow("sock2", Draw)
	l.Sweep(map[string]struct{}{"sock2": {}})
	assert.Equal(t, 1, l.Count())
}
