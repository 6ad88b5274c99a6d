package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
// Bookings, payments and wallet transactions are exposed under these ids.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Valid reports whether s is a 32-char lowercase hex id.
func Valid(s string) bool { return reHex32.MatchString(s) }

// Normalize trims and lowercases an id received from a client.
func Normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
