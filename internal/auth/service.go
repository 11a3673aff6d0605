// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Service orchestrates a login request across the throttle, the user
// store, the session registry and the audit log. It owns all mutable auth
// state for the process: construct one at startup, tear it down at exit.
type Service struct {
	store    *UserStore
	sessions *SessionRegistry
	audit    *AuditLog
	throttle *LoginThrottle
	logger   *slog.Logger
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token   string
	Session *Session
}

// NewService creates a Service over the given components.
func NewService(store *UserStore, sessions *SessionRegistry, audit *AuditLog, throttle *LoginThrottle, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		sessions: sessions,
		audit:    audit,
		throttle: throttle,
		logger:   logger,
	}
}

// Login runs the full login flow for (username, password, origin):
// throttle check, credential verification, session creation, audit.
//
// A locked-out origin is rejected before credentials are examined and
// without an audit row. Failed verification is audited as FAILURE and
// counted against the origin's attempt budget. UnknownUser and
// BadCredentials stay distinct errors; presentation layers are free to
// collapse them into one message.
func (s *Service) Login(username, password, origin string) (*LoginResult, error) {
	if remaining, locked := s.throttle.IsLocked(origin); locked {
		RecordLoginAttempt(MetricStatusLockedOut)
		s.logger.Info("login rejected, origin locked out",
			"origin", origin, "retry_in", remaining.Round(time.Second))
		return nil, oops.Code("AUTH_LOCKED_OUT").
			With("origin", origin).
			With("retry_in", remaining.Round(time.Second).String()).
			Wrapf(ErrLockedOut, "try again in %s", remaining.Round(time.Second))
	}

	profile, err := s.store.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) || errors.Is(err, ErrBadCredentials) {
			s.audit.Record(username, StatusFailure, origin)
			if s.throttle.RecordFailure(origin) {
				Lockouts.Inc()
				s.logger.Warn("origin locked out", "origin", origin)
			}
			RecordLoginAttempt(MetricStatusFailure)
			s.logger.Info("login failed", "username", username, "origin", origin)
		}
		// Storage errors pass through untouched: authentication did not
		// fail, persistence did.
		return nil, err
	}

	token, err := s.sessions.Create(username, profile)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	s.audit.Record(username, StatusSuccess, origin)
	RecordLoginAttempt(MetricStatusSuccess)
	ActiveSessions.Set(float64(s.sessions.Count()))
	s.logger.Info("login succeeded", "username", username, "origin", origin, "role", profile.Role)

	session, _ := s.sessions.Validate(token)
	return &LoginResult{Token: token, Session: session}, nil
}

// Logout ends the session for token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.sessions.End(token)
	ActiveSessions.Set(float64(s.sessions.Count()))
	s.logger.Debug("session ended")
}

// ValidateSession returns the live session for token, refreshing its
// activity timestamp.
func (s *Service) ValidateSession(token string) (*Session, bool) {
	return s.sessions.Validate(token)
}

// SweepSessions removes sessions older than maxAge and returns how many
// were removed.
func (s *Service) SweepSessions(maxAge time.Duration) int {
	removed := s.sessions.Sweep(maxAge)
	ActiveSessions.Set(float64(s.sessions.Count()))
	if removed > 0 {
		s.logger.Info("swept expired sessions", "removed", removed, "max_age", maxAge)
	}
	return removed
}

// RecentFailures returns recent audited FAILURE rows for origin, limited
// to the tail of the log.
func (s *Service) RecentFailures(origin string, limit int) []AuditEntry {
	return s.audit.RecentFailures(origin, limit)
}

// ThrottleState exposes the lockout state machine for diagnostics.
func (s *Service) ThrottleState(origin string) ThrottleState {
	return s.throttle.State(origin)
}

// Users returns the underlying user store for administrative operations.
func (s *Service) Users() *UserStore {
	return s.store
}
