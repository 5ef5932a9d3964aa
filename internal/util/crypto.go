package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 10000
	pbkdf2KeyLength  = 50
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// CryptoRandomString generates a random hex string of the given length.
func CryptoRandomString(length int) (string, error) {
	bytes, err := CryptoRandomBytes(int64((length + 1) / 2))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// HashToken returns the PBKDF2-SHA256 hash of token with salt, hex encoded.
func HashToken(token, salt string) string {
	hash := pbkdf2.Key([]byte(token), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(hash)
}

// VerifyTokenHash recomputes the hash of token and compares it to the stored
// hash in constant time.
func VerifyTokenHash(token, salt, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token, salt)), []byte(storedHash)) == 1
}

// SHA256Hex returns the SHA-256 hash of s as a lowercase hex string.
// Only for high-entropy inputs such as bearer tokens used as cache keys.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// IsLowerHex reports whether s is non-empty and consists only of 0-9a-f.
func IsLowerHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
