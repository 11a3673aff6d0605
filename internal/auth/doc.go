// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

// Package auth implements the QuillPad authentication core: password
// hashing, the persisted user store, the login audit log, the in-memory
// session registry, and per-origin login throttling.
//
// # Components
//
//   - PBKDF2Hasher - salts, hashes, verifies and rates passwords
//   - UserStore - durable username -> credential/profile mapping
//   - AuditLog - append-only CSV record of login attempts
//   - SessionRegistry - in-memory token -> identity mapping
//   - LoginThrottle - sliding-window failure tracking with lockouts
//   - Service - orchestrates a login request across all of the above
//
// # Concurrency
//
// The package is written for a single-user desktop process: every operation
// runs to completion on the goroutine that invoked it and the presentation
// layer serializes all calls. None of the types are safe for concurrent use;
// a server-style adaptation must add per-resource mutual exclusion first.
//
// Sessions and lockouts expire lazily on access. There are no background
// timers.
package auth
