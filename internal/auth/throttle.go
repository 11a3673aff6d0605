// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"time"
)

// ThrottleState describes an origin's position in the lockout state machine.
type ThrottleState string

// Throttle states. An origin moves OPEN -> TRACKING on its first recent
// failure, TRACKING -> LOCKED when the windowed failure count reaches the
// configured maximum, and back to OPEN once the lockout expiry passes.
const (
	ThrottleOpen     ThrottleState = "OPEN"
	ThrottleTracking ThrottleState = "TRACKING"
	ThrottleLocked   ThrottleState = "LOCKED"
)

// LoginThrottle tracks failed login attempts per origin identifier and
// enforces temporary lockouts. State is ephemeral and process-local;
// lockouts expire lazily on the next check, never via a timer.
type LoginThrottle struct {
	maxAttempts int
	window      time.Duration
	lockout     time.Duration

	failures    map[string][]time.Time
	lockedUntil map[string]time.Time
	now         func() time.Time
}

// NewLoginThrottle creates a throttle that locks an origin for lockout
// once maxAttempts failures accumulate within window.
func NewLoginThrottle(maxAttempts int, window, lockout time.Duration) *LoginThrottle {
	return &LoginThrottle{
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		failures:    make(map[string][]time.Time),
		lockedUntil: make(map[string]time.Time),
		now:         time.Now,
	}
}

// prune drops failure timestamps older than the tracking window and
// returns the remaining ones.
func (t *LoginThrottle) prune(origin string) []time.Time {
	cutoff := t.now().Add(-t.window)
	kept := t.failures[origin][:0]
	for _, ts := range t.failures[origin] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(t.failures, origin)
		return nil
	}
	t.failures[origin] = kept
	return kept
}

// RecordFailure notes a failed attempt for origin and returns true when
// this failure tripped the lockout threshold.
func (t *LoginThrottle) RecordFailure(origin string) bool {
	t.failures[origin] = append(t.failures[origin], t.now())
	recent := t.prune(origin)

	if len(recent) >= t.maxAttempts {
		t.lockedUntil[origin] = t.now().Add(t.lockout)
		return true
	}
	return false
}

// IsLocked reports whether origin is locked out, and for how much longer.
// An expired lock is cleared on the way through.
func (t *LoginThrottle) IsLocked(origin string) (time.Duration, bool) {
	until, ok := t.lockedUntil[origin]
	if !ok {
		return 0, false
	}
	remaining := until.Sub(t.now())
	if remaining <= 0 {
		delete(t.lockedUntil, origin)
		return 0, false
	}
	return remaining, true
}

// State returns the throttle state for origin.
func (t *LoginThrottle) State(origin string) ThrottleState {
	if _, locked := t.IsLocked(origin); locked {
		return ThrottleLocked
	}
	if len(t.prune(origin)) > 0 {
		return ThrottleTracking
	}
	return ThrottleOpen
}
