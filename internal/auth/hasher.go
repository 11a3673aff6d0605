// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// Key-derivation parameters.
const (
	saltBytes      = 32     // random salt length before hex encoding
	hashIterations = 100000 // PBKDF2-HMAC-SHA256 iteration count
	derivedKeyLen  = 32     // derived key length in bytes
)

// specialChars is the fixed set a password must draw at least one
// character from.
const specialChars = "!@#$%^&*"

// PasswordHasher hashes, verifies and rates passwords.
type PasswordHasher interface {
	// Hash produces a salted hash encoded as "salt$iterations$key".
	// Two calls with the same password yield different strings.
	Hash(password string) (string, error)

	// Verify reports whether candidate matches the encoded hash.
	// Malformed hash strings always verify as false; Verify never panics.
	Verify(candidate, encoded string) bool

	// CheckComplexity returns nil if the password satisfies the policy,
	// or an error wrapping ErrWeakPassword naming the first violated rule.
	CheckComplexity(password string) error
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2-HMAC-SHA256.
//
// The encoded form is "saltHex$iterations$derivedKeyHex". The salt is the
// hex string itself: its UTF-8 bytes feed the KDF, so records written by
// earlier releases keep verifying unchanged.
type PBKDF2Hasher struct {
	minLength int
}

// NewPBKDF2Hasher creates a hasher whose complexity policy requires at
// least minLength characters.
func NewPBKDF2Hasher(minLength int) *PBKDF2Hasher {
	return &PBKDF2Hasher{minLength: minLength}
}

// Hash produces a salted PBKDF2 hash of the password with a fresh salt.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	salt := hex.EncodeToString(raw)

	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, derivedKeyLen, sha256.New)

	return salt + "$" + strconv.Itoa(hashIterations) + "$" + hex.EncodeToString(key), nil
}

// parsedCredential is the decoded form of a stored hash string.
type parsedCredential struct {
	salt       string
	iterations int
	key        []byte
}

// parseCredential splits an encoded hash into its three fields. Any
// deviation from the expected shape is reported as errMalformedCredential;
// the caller decides how to fail.
func parseCredential(encoded string) (parsedCredential, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return parsedCredential{}, oops.Code("AUTH_MALFORMED_HASH").
			With("fields", len(parts)).
			Wrap(errMalformedCredential)
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return parsedCredential{}, oops.Code("AUTH_MALFORMED_HASH").
			Wrap(errMalformedCredential)
	}

	key, err := hex.DecodeString(parts[2])
	if err != nil || len(key) == 0 || parts[0] == "" {
		return parsedCredential{}, oops.Code("AUTH_MALFORMED_HASH").
			Wrap(errMalformedCredential)
	}

	return parsedCredential{salt: parts[0], iterations: iterations, key: key}, nil
}

// Verify recomputes the derived key with the stored salt and iteration
// count and compares in constant time. Fails closed on malformed input.
func (h *PBKDF2Hasher) Verify(candidate, encoded string) bool {
	parsed, err := parseCredential(encoded)
	if err != nil {
		return false
	}

	computed := pbkdf2.Key([]byte(candidate), []byte(parsed.salt), parsed.iterations, len(parsed.key), sha256.New)

	return subtle.ConstantTimeCompare(computed, parsed.key) == 1
}

// CheckComplexity applies the password policy: minimum length, at least
// one digit, one letter, and one character from specialChars.
func (h *PBKDF2Hasher) CheckComplexity(password string) error {
	if utf8.RuneCountInString(password) < h.minLength {
		return oops.Code("AUTH_WEAK_PASSWORD").
			With("rule", "min_length").
			Wrapf(ErrWeakPassword, "password must be at least %d characters", h.minLength)
	}

	var hasDigit, hasLetter, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}

	if !hasDigit {
		return oops.Code("AUTH_WEAK_PASSWORD").
			With("rule", "digit").
			Wrapf(ErrWeakPassword, "password must contain a digit")
	}
	if !hasLetter {
		return oops.Code("AUTH_WEAK_PASSWORD").
			With("rule", "letter").
			Wrapf(ErrWeakPassword, "password must contain a letter")
	}
	if !hasSpecial {
		return oops.Code("AUTH_WEAK_PASSWORD").
			With("rule", "special").
			Wrapf(ErrWeakPassword, "password must contain a special character (%s)", specialChars)
	}
	return nil
}
