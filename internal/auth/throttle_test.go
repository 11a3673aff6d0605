// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle() (*LoginThrottle, *fakeClock) {
	clock := newFakeClock()
	throttle := NewLoginThrottle(3, time.Hour, 5*time.Minute)
	throttle.now = clock.now
	return throttle, clock
}

func TestLoginThrottle_StateMachine(t *testing.T) {
	throttle, _ := newTestThrottle()

	assert.Equal(t, ThrottleOpen, throttle.State("o1"))

	throttle.RecordFailure("o1")
	assert.Equal(t, ThrottleTracking, throttle.State("o1"))

	throttle.RecordFailure("o1")
	locked := throttle.RecordFailure("o1")
	assert.True(t, locked)
	assert.Equal(t, ThrottleLocked, throttle.State("o1"))
}

func TestLoginThrottle_IsLocked(t *testing.T) {
	t.Run("locks after max attempts within the window", func(t *testing.T) {
		throttle, clock := newTestThrottle()

		for i := 0; i < 3; i++ {
			throttle.RecordFailure("o1")
			clock.advance(time.Second)
		}

		remaining, locked := throttle.IsLocked("o1")
		require.True(t, locked)
		assert.Positive(t, remaining)
		assert.LessOrEqual(t, remaining, 5*time.Minute)
	})

	t.Run("expired lockout clears lazily", func(t *testing.T) {
		throttle, clock := newTestThrottle()
		for i := 0; i < 3; i++ {
			throttle.RecordFailure("o1")
		}

		clock.advance(5*time.Minute + time.Second)
		_, locked := throttle.IsLocked("o1")
		assert.False(t, locked)

		// Cleared, not merely hidden.
		_, locked = throttle.IsLocked("o1")
		assert.False(t, locked)
	})

	t.Run("failures outside the window do not count", func(t *testing.T) {
		throttle, clock := newTestThrottle()

		throttle.RecordFailure("o1")
		throttle.RecordFailure("o1")
		clock.advance(61 * time.Minute)

		locked := throttle.RecordFailure("o1")
		assert.False(t, locked)
		assert.Equal(t, ThrottleTracking, throttle.State("o1"))
	})

	t.Run("origins are independent", func(t *testing.T) {
		throttle, _ := newTestThrottle()
		for i := 0; i < 3; i++ {
			throttle.RecordFailure("o1")
		}

		_, locked := throttle.IsLocked("o2")
		assert.False(t, locked)
		assert.Equal(t, ThrottleOpen, throttle.State("o2"))
	})

	t.Run("unknown origin is open", func(t *testing.T) {
		throttle, _ := newTestThrottle()
		_, locked := throttle.IsLocked("nobody")
		assert.False(t, locked)
	})
}
