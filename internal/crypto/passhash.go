// Package crypto implements password digests for the account store.
//
// The default digest (Legacy) is the 32-bit string hash used by the original
// browser application. It is NOT a security primitive: it exists so stored
// documents stay compatible and is suitable for demos only. Argon2 is an
// explicit opt-in that changes the stored digest format.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/argon2"
)

// Hasher produces and checks password digests.
type Hasher interface {
	// Digest returns the stored form of password.
	Digest(password string) (string, error)
	// Verify reports whether password matches the stored digest.
	Verify(password, digest string) bool
}

// Argon2id parameters.
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16

	argonPrefix = "argon2id"
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// LegacyDigest computes h = h*31 + c over UTF-16 code units with 32-bit
// wraparound and renders it in decimal.
func LegacyDigest(password string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(password)) {
		h = (h << 5) - h + int32(c)
	}
	return strconv.FormatInt(int64(h), 10)
}

// Legacy is the demo-only digest. NOT SECURE.
type Legacy struct{}

// Digest returns LegacyDigest(password).
func (Legacy) Digest(password string) (string, error) { return LegacyDigest(password), nil }

// Verify compares the legacy digest of password with digest.
func (Legacy) Verify(password, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(LegacyDigest(password)), []byte(digest)) == 1
}

// Argon2 stores "argon2id$<salt>$<key>" with a per-password random salt.
type Argon2 struct{}

// HashPassword returns Argon2id hash of password using the provided salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Digest hashes password with a fresh salt.
func (Argon2) Digest(password string) (string, error) {
	salt, err := RandBytes(argonSaltLen)
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	enc := base64.RawStdEncoding
	key := HashPassword([]byte(password), salt)
	return argonPrefix + "$" + enc.EncodeToString(salt) + "$" + enc.EncodeToString(key), nil
}

// Verify re-derives the key with the stored salt and compares in constant time.
func (Argon2) Verify(password, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 3 || parts[0] != argonPrefix {
		return false
	}
	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := enc.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := HashPassword([]byte(password), salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// NewHasher returns the hasher registered under name. Empty selects Legacy.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "legacy":
		return Legacy{}, nil
	case "argon2", "argon2id":
		return Argon2{}, nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}
