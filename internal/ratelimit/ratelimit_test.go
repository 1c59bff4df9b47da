package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(3, time.Minute, 5, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Other clients are unaffected.
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestWindowEviction(t *testing.T) {
	l := New(2, time.Minute, 5, time.Minute)

	current := time.Now()
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Old entries fall out of the window.
	current = current.Add(61 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestFailureBlocking(t *testing.T) {
	l := New(100, time.Minute, 3, time.Minute)

	assert.False(t, l.IsBlocked("1.2.3.4"))
	l.RecordFailure("1.2.3.4")
	l.RecordFailure("1.2.3.4")
	assert.False(t, l.IsBlocked("1.2.3.4"))

	l.RecordFailure("1.2.3.4")
	assert.True(t, l.IsBlocked("1.2.3.4"))
}

func TestBlockExpires(t *testing.T) {
	l := New(100, time.Minute, 1, time.Minute)

	current := time.Now()
	l.now = func() time.Time { return current }

	l.RecordFailure("1.2.3.4")
	assert.True(t, l.IsBlocked("1.2.3.4"))

	current = current.Add(2 * time.Minute)
	assert.False(t, l.IsBlocked("1.2.3.4"))
	// Failure counter resets with the block.
	l.RecordFailure("1.2.3.4")
	assert.True(t, l.IsBlocked("1.2.3.4"))
}

func TestReset(t *testing.T) {
	l := New(100, time.Minute, 1, time.Minute)

	l.RecordFailure("1.2.3.4")
	assert.True(t, l.IsBlocked("1.2.3.4"))

	l.Reset("1.2.3.4")
	assert.False(t, l.IsBlocked("1.2.3.4"))
}
