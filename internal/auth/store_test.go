// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpad/quillpad/internal/auth"
)

func newTestStore(t *testing.T) (*auth.UserStore, string, string) {
	t.Helper()
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	require.NoError(t, os.MkdirAll(backups, 0o700))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := auth.NewUserStore(filepath.Join(dir, "users.json"), backups, auth.NewPBKDF2Hasher(8), logger)
	return store, filepath.Join(dir, "users.json"), backups
}

func TestUserStore_Load(t *testing.T) {
	t.Run("missing file seeds defaults and persists", func(t *testing.T) {
		store, path, _ := newTestStore(t)

		require.NoError(t, store.Load())

		profiles := store.ListUsers()
		require.Len(t, profiles, 2)
		assert.Equal(t, "anna.sidorova", profiles[0].Username)
		assert.Equal(t, auth.RoleEditor, profiles[0].Role)
		assert.Equal(t, "ivan.petrov", profiles[1].Username)
		assert.Equal(t, auth.RoleAdmin, profiles[1].Role)

		// Seeding persisted immediately.
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("seeded credentials authenticate", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		require.NoError(t, store.Load())

		profile, err := store.Authenticate("ivan.petrov", "User123!")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, profile.Role)
	})

	t.Run("corrupt file falls back to defaults in memory", func(t *testing.T) {
		store, path, _ := newTestStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		require.NoError(t, store.Load())
		assert.Len(t, store.ListUsers(), 2)

		// The corrupt file is left alone, not overwritten.
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{not json", string(data))
	})

	t.Run("schema violation counts as corrupt", func(t *testing.T) {
		store, path, _ := newTestStore(t)
		// Valid JSON, but a record without password_hash.
		require.NoError(t, os.WriteFile(path, []byte(`{"eve": {"role": "admin"}}`), 0o600))

		require.NoError(t, store.Load())
		_, ok := store.Get("eve")
		assert.False(t, ok)
		assert.Len(t, store.ListUsers(), 2)
	})
}

func TestUserStore_AddUser(t *testing.T) {
	t.Run("weak password is rejected with the violated rule", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		require.NoError(t, store.Load())

		err := store.AddUser("alice", "Weak1", auth.Profile{})
		require.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("strong password creates a user with role user", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		require.NoError(t, store.Load())

		require.NoError(t, store.AddUser("alice", "Str0ng!pass", auth.Profile{Email: "alice@quillpad.local"}))

		profile, err := store.Authenticate("alice", "Str0ng!pass")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleUser, profile.Role)
		assert.Equal(t, "alice", profile.FullName) // defaults to username
		assert.Equal(t, auth.AvatarColor("alice"), profile.AvatarColor)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		require.NoError(t, store.Load())

		require.NoError(t, store.AddUser("alice", "Str0ng!pass", auth.Profile{}))
		err := store.AddUser("alice", "0ther!pass", auth.Profile{})
		require.ErrorIs(t, err, auth.ErrDuplicateUser)
	})

	t.Run("usernames are case-sensitive", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		require.NoError(t, store.Load())

		require.NoError(t, store.AddUser("alice", "Str0ng!pass", auth.Profile{}))
		require.NoError(t, store.AddUser("Alice", "Str0ng!pass", auth.Profile{}))

		_, err := store.Authenticate("Alice", "Str0ng!pass")
		assert.NoError(t, err)
	})
}

func TestUserStore_Authenticate(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.Load())

	t.Run("unknown user is distinguished from bad password", func(t *testing.T) {
		_, err := store.Authenticate("nobody", "whatever")
		require.ErrorIs(t, err, auth.ErrUnknownUser)

		_, err = store.Authenticate("ivan.petrov", "wrong password")
		require.ErrorIs(t, err, auth.ErrBadCredentials)
	})

	t.Run("success stamps last login and persists it", func(t *testing.T) {
		_, err := store.Authenticate("ivan.petrov", "User123!")
		require.NoError(t, err)

		u, ok := store.Get("ivan.petrov")
		require.True(t, ok)
		assert.False(t, u.LastLoginAt.IsZero())
	})
}

func TestUserStore_SaveBackups(t *testing.T) {
	store, path, backups := newTestStore(t)
	require.NoError(t, store.Load())

	// First save already happened during seeding; the file existed before
	// this mutation, so a backup must appear.
	require.NoError(t, store.AddUser("alice", "Str0ng!pass", auth.Profile{}))

	matches, err := filepath.Glob(filepath.Join(backups, "users_backup_*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	// The backup holds the pre-mutation content.
	backup, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.NotContains(t, string(backup), "alice")

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(current), "alice")
}

func TestUserStore_RoundTrip(t *testing.T) {
	store, path, backups := newTestStore(t)
	require.NoError(t, store.Load())
	require.NoError(t, store.AddUser("alice", "Str0ng!pass", auth.Profile{
		FullName:   "Alice Liddell",
		Email:      "alice@quillpad.local",
		Department: "QA",
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reloaded := auth.NewUserStore(path, backups, auth.NewPBKDF2Hasher(8), logger)
	require.NoError(t, reloaded.Load())

	orig, ok := store.Get("alice")
	require.True(t, ok)
	back, ok := reloaded.Get("alice")
	require.True(t, ok)

	assert.Equal(t, orig.PasswordHash, back.PasswordHash)
	assert.Equal(t, orig.Role, back.Role)
	assert.Equal(t, orig.FullName, back.FullName)
	assert.Equal(t, orig.Email, back.Email)
	assert.Equal(t, orig.Department, back.Department)
	assert.Equal(t, orig.AvatarColor, back.AvatarColor)
	assert.True(t, orig.CreatedAt.Equal(back.CreatedAt))
}

func TestUserStore_UpdateUser(t *testing.T) {
	t.Run("merges known and unknown fields", func(t *testing.T) {
		store, path, backups := newTestStore(t)
		require.NoError(t, store.Load())

		updates := map[string]json.RawMessage{
			"department": json.RawMessage(`"Platform"`),
			"pronouns":   json.RawMessage(`"she/her"`),
		}
		require.NoError(t, store.UpdateUser("anna.sidorova", updates))

		u, ok := store.Get("anna.sidorova")
		require.True(t, ok)
		assert.Equal(t, "Platform", u.Department)
		assert.Contains(t, u.Extra, "pronouns")

		// Unknown fields survive a reload.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		reloaded := auth.NewUserStore(path, backups, auth.NewPBKDF2Hasher(8), logger)
		require.NoError(t, reloaded.Load())
		back, ok := reloaded.Get("anna.sidorova")
		require.True(t, ok)
		assert.Equal(t, json.RawMessage(`"she/her"`), back.Extra["pronouns"])
	})

	t.Run("unknown user", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		require.NoError(t, store.Load())
		err := store.UpdateUser("nobody", nil)
		require.ErrorIs(t, err, auth.ErrUnknownUser)
	})
}

func TestUserStore_DeleteUser(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.Load())

	require.NoError(t, store.DeleteUser("anna.sidorova"))
	_, ok := store.Get("anna.sidorova")
	assert.False(t, ok)

	err := store.DeleteUser("anna.sidorova")
	require.ErrorIs(t, err, auth.ErrUnknownUser)
}

func TestUserStore_RoleCounts(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.Load())
	require.NoError(t, store.AddUser("alice", "Str0ng!pass", auth.Profile{}))
	require.NoError(t, store.AddUser("bob", "Str0ng!pass2", auth.Profile{}))

	counts := store.RoleCounts()
	assert.Equal(t, 1, counts[auth.RoleAdmin])
	assert.Equal(t, 1, counts[auth.RoleEditor])
	assert.Equal(t, 2, counts[auth.RoleUser])
}
