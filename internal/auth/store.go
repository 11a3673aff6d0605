// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// backupTimeFormat suffixes user-store backup file names.
const backupTimeFormat = "20060102_150405"

//go:embed users_schema.json
var usersSchemaJSON []byte

// usersSchema holds the compiled store schema to avoid recompilation.
var usersSchema *jschema.Schema

// compiledUsersSchema returns the cached compiled schema or compiles it.
func compiledUsersSchema() (*jschema.Schema, error) {
	if usersSchema != nil {
		return usersSchema, nil
	}

	var schemaData any
	if err := json.Unmarshal(usersSchemaJSON, &schemaData); err != nil {
		return nil, oops.Code("STORE_SCHEMA_INVALID").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("users_schema.json", schemaData); err != nil {
		return nil, oops.Code("STORE_SCHEMA_INVALID").Wrap(err)
	}
	sch, err := c.Compile("users_schema.json")
	if err != nil {
		return nil, oops.Code("STORE_SCHEMA_INVALID").Wrap(err)
	}

	usersSchema = sch
	return sch, nil
}

// UserStore is the durable username -> record mapping. Usernames are
// unique and case-sensitive.
type UserStore struct {
	path       string
	backupsDir string
	hasher     PasswordHasher
	logger     *slog.Logger
	users      map[string]*User
	now        func() time.Time
}

// NewUserStore creates a store persisting to path, with pre-write backups
// placed in backupsDir. Call Load before any other method.
func NewUserStore(path, backupsDir string, hasher PasswordHasher, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		path:       path,
		backupsDir: backupsDir,
		hasher:     hasher,
		logger:     logger,
		users:      make(map[string]*User),
		now:        time.Now,
	}
}

// defaultUsers seeds the store shipped with a fresh install.
func (s *UserStore) defaultUsers() (map[string]*User, error) {
	seeds := []struct {
		username string
		password string
		role     Role
		fullName string
		email    string
		dept     string
	}{
		{"ivan.petrov", "User123!", RoleAdmin, "Ivan Petrov", "ivan.petrov@quillpad.local", "IT"},
		{"anna.sidorova", "Anna2024!", RoleEditor, "Anna Sidorova", "anna.sidorova@quillpad.local", "Editorial"},
	}

	users := make(map[string]*User, len(seeds))
	for _, seed := range seeds {
		hash, err := s.hasher.Hash(seed.password)
		if err != nil {
			return nil, oops.Code("STORE_SEED_FAILED").With("username", seed.username).Wrap(err)
		}
		users[seed.username] = &User{
			PasswordHash: hash,
			Role:         seed.role,
			FullName:     seed.fullName,
			Email:        seed.email,
			Department:   seed.dept,
			AvatarColor:  AvatarColor(seed.username),
			CreatedAt:    s.now(),
		}
	}
	return users, nil
}

// decodeUsers validates raw file contents against the store schema and
// decodes them into records.
func decodeUsers(data []byte) (map[string]*User, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, oops.Code("STORE_DECODE_FAILED").Wrap(err)
	}

	sch, err := compiledUsersSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(generic); err != nil {
		return nil, oops.Code("STORE_SCHEMA_VIOLATION").Wrap(err)
	}

	users := make(map[string]*User)
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, oops.Code("STORE_DECODE_FAILED").Wrap(err)
	}
	return users, nil
}

// Load reads the persisted record set. A missing file seeds the default
// accounts and persists them immediately. An unreadable or corrupt file is
// logged and replaced in memory by the default set without touching disk,
// so a damaged store never crashes the application.
func (s *UserStore) Load() error {
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		users, decodeErr := decodeUsers(data)
		if decodeErr != nil {
			s.logger.Error("user store is corrupt, falling back to defaults",
				"path", s.path, "error", decodeErr)
			return s.loadDefaultsInMemory()
		}
		s.users = users
		return nil

	case errors.Is(err, fs.ErrNotExist):
		users, seedErr := s.defaultUsers()
		if seedErr != nil {
			return seedErr
		}
		s.users = users
		return s.Save()

	default:
		s.logger.Error("user store is unreadable, falling back to defaults",
			"path", s.path, "error", err)
		return s.loadDefaultsInMemory()
	}
}

func (s *UserStore) loadDefaultsInMemory() error {
	users, err := s.defaultUsers()
	if err != nil {
		return err
	}
	s.users = users
	return nil
}

// backup copies the current store file into the backups directory with a
// timestamp suffix. Backups are retained indefinitely.
func (s *UserStore) backup() error {
	src, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // nothing to back up yet
		}
		return oops.Code("STORE_BACKUP_FAILED").Wrapf(ErrStorageUnavailable, "open store for backup: %v", err)
	}
	defer src.Close()

	name := "users_backup_" + s.now().Format(backupTimeFormat) + ".json"
	dstPath := filepath.Join(s.backupsDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return oops.Code("STORE_BACKUP_FAILED").With("backup", dstPath).
			Wrapf(ErrStorageUnavailable, "create backup: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return oops.Code("STORE_BACKUP_FAILED").With("backup", dstPath).
			Wrapf(ErrStorageUnavailable, "write backup: %v", err)
	}
	return nil
}

// Save persists the record set. The existing file is copied to a
// timestamped backup strictly before the overwrite, so a crash mid-save
// leaves either the old or the new store, never a truncated one without a
// backup. Write failures surface to the caller.
func (s *UserStore) Save() error {
	if err := s.backup(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.users, "", "    ")
	if err != nil {
		return oops.Code("STORE_ENCODE_FAILED").Wrapf(ErrStorageUnavailable, "encode store: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).
			Wrapf(ErrStorageUnavailable, "write store: %v", err)
	}
	return nil
}

// AddUser creates a record for username. The role defaults to "user" when
// the profile does not name one; the avatar color is derived from the
// username. The new record is persisted before returning.
func (s *UserStore) AddUser(username, password string, profile Profile) error {
	if _, exists := s.users[username]; exists {
		return oops.Code("AUTH_DUPLICATE_USER").With("username", username).
			Wrapf(ErrDuplicateUser, "user %q already exists", username)
	}

	if err := s.hasher.CheckComplexity(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	role := profile.Role
	if role == "" {
		role = RoleUser
	}
	fullName := profile.FullName
	if fullName == "" {
		fullName = username
	}

	s.users[username] = &User{
		PasswordHash: hash,
		Role:         role,
		FullName:     fullName,
		Email:        profile.Email,
		Department:   profile.Department,
		AvatarColor:  AvatarColor(username),
		CreatedAt:    s.now(),
	}

	if err := s.Save(); err != nil {
		delete(s.users, username)
		return err
	}
	return nil
}

// Authenticate verifies the credentials and, on success, stamps
// last_login_at and persists before returning the profile snapshot.
func (s *UserStore) Authenticate(username, password string) (Profile, error) {
	u, ok := s.users[username]
	if !ok {
		return Profile{}, oops.Code("AUTH_UNKNOWN_USER").With("username", username).
			Wrap(ErrUnknownUser)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return Profile{}, oops.Code("AUTH_BAD_CREDENTIALS").With("username", username).
			Wrap(ErrBadCredentials)
	}

	u.LastLoginAt = s.now()
	if err := s.Save(); err != nil {
		return Profile{}, err
	}
	return u.Profile(username), nil
}

// UpdateUser merges raw field updates into the record and persists. Unknown
// field names are kept verbatim, which makes field additions from newer
// releases forward-compatible.
func (s *UserStore) UpdateUser(username string, fields map[string]json.RawMessage) error {
	u, ok := s.users[username]
	if !ok {
		return oops.Code("AUTH_UNKNOWN_USER").With("username", username).
			Wrap(ErrUnknownUser)
	}

	current, err := json.Marshal(u)
	if err != nil {
		return oops.Code("STORE_ENCODE_FAILED").Wrap(err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return oops.Code("STORE_DECODE_FAILED").Wrap(err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	remarshaled, err := json.Marshal(merged)
	if err != nil {
		return oops.Code("STORE_ENCODE_FAILED").Wrap(err)
	}

	updated := &User{}
	if err := json.Unmarshal(remarshaled, updated); err != nil {
		return oops.Code("STORE_DECODE_FAILED").With("username", username).Wrap(err)
	}

	s.users[username] = updated
	if err := s.Save(); err != nil {
		s.users[username] = u
		return err
	}
	return nil
}

// DeleteUser removes the record and persists.
func (s *UserStore) DeleteUser(username string) error {
	u, ok := s.users[username]
	if !ok {
		return oops.Code("AUTH_UNKNOWN_USER").With("username", username).
			Wrap(ErrUnknownUser)
	}

	delete(s.users, username)
	if err := s.Save(); err != nil {
		s.users[username] = u
		return err
	}
	return nil
}

// Get returns the record for username.
func (s *UserStore) Get(username string) (*User, bool) {
	u, ok := s.users[username]
	return u, ok
}

// ListUsers returns profile snapshots sorted by username.
func (s *UserStore) ListUsers() []Profile {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, s.users[name].Profile(name))
	}
	return profiles
}

// RoleCounts returns the number of accounts per role.
func (s *UserStore) RoleCounts() map[Role]int {
	counts := make(map[Role]int)
	for _, u := range s.users {
		counts[u.Role]++
	}
	return counts
}
