// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// SessionTokenBytes is the entropy of a session token before hex encoding.
const SessionTokenBytes = 16

// Session is one authenticated in-memory session. The profile is a
// snapshot taken at creation; later store updates do not rewrite it.
type Session struct {
	Username       string
	Profile        Profile
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// SessionRegistry maps opaque random tokens to sessions. State is
// process-local and lost on restart; expiry happens only via Sweep.
type SessionRegistry struct {
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create stores a session for username and returns its token. Tokens are
// random and never reused while the process lives.
func (r *SessionRegistry) Create(username string, profile Profile) (string, error) {
	var token string
	for {
		raw := make([]byte, SessionTokenBytes)
		if _, err := rand.Read(raw); err != nil {
			return "", oops.Code("SESSION_TOKEN_FAILED").
				With("requested_bytes", SessionTokenBytes).
				Wrap(err)
		}
		token = hex.EncodeToString(raw)
		if _, taken := r.sessions[token]; !taken {
			break
		}
	}

	now := r.now()
	r.sessions[token] = &Session{
		Username:       username,
		Profile:        profile,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	return token, nil
}

// Validate returns the session for token and refreshes its activity
// timestamp. The maximum lifetime is not renewed; only Sweep ends old
// sessions.
func (r *SessionRegistry) Validate(token string) (*Session, bool) {
	s, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	s.LastActivityAt = r.now()
	return s, true
}

// End removes the session for token. Ending an unknown token is a no-op.
func (r *SessionRegistry) End(token string) {
	delete(r.sessions, token)
}

// Sweep removes every session older than maxAge (by creation time) and
// returns the number removed. Callers trigger this; there is no timer.
func (r *SessionRegistry) Sweep(maxAge time.Duration) int {
	now := r.now()
	removed := 0
	for token, s := range r.sessions {
		if now.Sub(s.CreatedAt) > maxAge {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	return len(r.sessions)
}
