// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"encoding/json"
	"time"

	"github.com/samber/oops"
)

// Role names the coarse permission level of an account.
type Role string

// Known roles. The store does not reject unknown role strings read from
// disk; they simply count as their own bucket in RoleCounts.
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// avatarPalette is the fixed set of display colors. Avatar colors are a
// pure function of the username so they survive reloads.
var avatarPalette = [...]string{
	"#3498db", "#e74c3c", "#2ecc71", "#f39c12",
	"#9b59b6", "#1abc9c", "#d35400", "#c0392b",
}

// AvatarColor derives the display color for a username: the sum of its
// character codes modulo the palette size.
func AvatarColor(username string) string {
	sum := 0
	for _, r := range username {
		sum += int(r)
	}
	return avatarPalette[sum%len(avatarPalette)]
}

// Profile is the subset of an account exposed to sessions and the UI.
// It never carries the password hash.
type Profile struct {
	Username    string
	Role        Role
	FullName    string
	Email       string
	Department  string
	AvatarColor string
}

// User is one credential/profile record in the persisted store.
type User struct {
	PasswordHash string
	Role         Role
	FullName     string
	Email        string
	Department   string
	AvatarColor  string
	CreatedAt    time.Time
	LastLoginAt  time.Time // zero when the user has never logged in

	// Extra preserves JSON fields this release does not know about, so a
	// rewrite never drops data written by a newer one.
	Extra map[string]json.RawMessage
}

// Persisted field names.
const (
	fieldPasswordHash = "password_hash"
	fieldRole         = "role"
	fieldFullName     = "full_name"
	fieldEmail        = "email"
	fieldDepartment   = "department"
	fieldAvatarColor  = "avatar_color"
	fieldCreatedAt    = "created_at"
	fieldLastLoginAt  = "last_login_at"
)

// timestampFormat is the wire format for record timestamps. The Nano
// variant keeps full precision so a persist/reload cycle is lossless.
const timestampFormat = time.RFC3339Nano

// Profile returns the session-facing snapshot of the record.
func (u *User) Profile(username string) Profile {
	return Profile{
		Username:    username,
		Role:        u.Role,
		FullName:    u.FullName,
		Email:       u.Email,
		Department:  u.Department,
		AvatarColor: u.AvatarColor,
	}
}

// MarshalJSON writes the known fields plus any preserved unknown ones.
// A zero LastLoginAt is written as the empty string.
func (u *User) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(u.Extra)+8)
	for k, v := range u.Extra {
		m[k] = v
	}

	lastLogin := ""
	if !u.LastLoginAt.IsZero() {
		lastLogin = u.LastLoginAt.Format(timestampFormat)
	}

	known := map[string]any{
		fieldPasswordHash: u.PasswordHash,
		fieldRole:         string(u.Role),
		fieldFullName:     u.FullName,
		fieldEmail:        u.Email,
		fieldDepartment:   u.Department,
		fieldAvatarColor:  u.AvatarColor,
		fieldCreatedAt:    u.CreatedAt.Format(timestampFormat),
		fieldLastLoginAt:  lastLogin,
	}
	for k, v := range known {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, oops.Code("STORE_ENCODE_FAILED").With("field", k).Wrap(err)
		}
		m[k] = raw
	}

	return json.Marshal(m)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return oops.Code("STORE_DECODE_FAILED").Wrap(err)
	}

	takeString := func(key string) (string, error) {
		raw, ok := m[key]
		if !ok {
			return "", nil
		}
		delete(m, key)
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", oops.Code("STORE_DECODE_FAILED").With("field", key).Wrap(err)
		}
		return s, nil
	}

	var err error
	if u.PasswordHash, err = takeString(fieldPasswordHash); err != nil {
		return err
	}
	role, err := takeString(fieldRole)
	if err != nil {
		return err
	}
	u.Role = Role(role)
	if u.FullName, err = takeString(fieldFullName); err != nil {
		return err
	}
	if u.Email, err = takeString(fieldEmail); err != nil {
		return err
	}
	if u.Department, err = takeString(fieldDepartment); err != nil {
		return err
	}
	if u.AvatarColor, err = takeString(fieldAvatarColor); err != nil {
		return err
	}

	created, err := takeString(fieldCreatedAt)
	if err != nil {
		return err
	}
	if created != "" {
		if u.CreatedAt, err = time.Parse(timestampFormat, created); err != nil {
			return oops.Code("STORE_DECODE_FAILED").With("field", fieldCreatedAt).Wrap(err)
		}
	}

	lastLogin, err := takeString(fieldLastLoginAt)
	if err != nil {
		return err
	}
	if lastLogin != "" {
		if u.LastLoginAt, err = time.Parse(timestampFormat, lastLogin); err != nil {
			return oops.Code("STORE_DECODE_FAILED").With("field", fieldLastLoginAt).Wrap(err)
		}
	}

	if len(m) > 0 {
		u.Extra = m
	} else {
		u.Extra = nil
	}
	return nil
}
