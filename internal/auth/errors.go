// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import "errors"

// Sentinel errors for the authentication core. Call sites wrap these with
// oops codes and context; callers match with errors.Is.
var (
	// ErrDuplicateUser is returned when creating a user whose name is taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUnknownUser is returned when the named user does not exist.
	// The CLI may render this and ErrBadCredentials as one generic message
	// to avoid account enumeration; the core keeps them distinct so the
	// audit log and diagnostics stay accurate.
	ErrUnknownUser = errors.New("unknown user")

	// ErrBadCredentials is returned when password verification fails.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrWeakPassword is returned when a password fails the complexity
	// policy. The wrapping error message names the violated rule.
	ErrWeakPassword = errors.New("password too weak")

	// ErrStorageUnavailable is returned when the persisted user store
	// cannot be read or written.
	ErrStorageUnavailable = errors.New("user store unavailable")

	// ErrLockedOut is returned when an origin has exceeded the failed
	// login attempt budget and the lockout has not yet expired.
	ErrLockedOut = errors.New("too many failed login attempts")

	// errMalformedCredential marks an unparseable stored hash. It never
	// escapes the package: verification maps it to "not verified".
	errMalformedCredential = errors.New("malformed credential record")
)
