// Package digest computes and compares one-way SHA-256 digests of short
// secrets such as the admin passphrase.
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Size is the length of a hex digest produced by Hex.
const Size = sha256.Size * 2

// Hex returns the lowercase hex SHA-256 digest of s.
func Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Match reports whether plaintext hashes to expectedHex.
// The comparison runs in constant time; an empty or malformed expected
// digest never matches.
func Match(plaintext, expectedHex string) bool {
	expected := strings.ToLower(strings.TrimSpace(expectedHex))
	if len(expected) != Size {
		return false
	}
	got := Hex(plaintext)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
