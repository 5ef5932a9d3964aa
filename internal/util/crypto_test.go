package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomString(t *testing.T) {
	t.Run("Generate correct length", func(t *testing.T) {
		str, err := CryptoRandomString(20)
		require.NoError(t, err)
		assert.Len(t, str, 20)
		assert.True(t, IsLowerHex(str))
	})

	t.Run("Odd length", func(t *testing.T) {
		str, err := CryptoRandomString(7)
		require.NoError(t, err)
		assert.Len(t, str, 7)
	})
}

func TestSHA256Hex(t *testing.T) {
	// echo -n "hello" | sha256sum
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", SHA256Hex("hello"))
	assert.Len(t, SHA256Hex("any input"), 64)
}

func TestHashToken(t *testing.T) {
	t.Run("Deterministic for same salt", func(t *testing.T) {
		hash1 := HashToken("device-code", "salt")
		hash2 := HashToken("device-code", "salt")
		assert.Equal(t, hash1, hash2)
		assert.Len(t, hash1, 100) // 50 bytes = 100 hex chars
	})

	t.Run("Salt changes the hash", func(t *testing.T) {
		assert.NotEqual(t, HashToken("device-code", "salt1"), HashToken("device-code", "salt2"))
	})

	t.Run("Verify matches only the original token", func(t *testing.T) {
		hash := HashToken("device-code", "salt")
		assert.True(t, VerifyTokenHash("device-code", "salt", hash))
		assert.False(t, VerifyTokenHash("device-codf", "salt", hash))
		assert.False(t, VerifyTokenHash("device-code", "other", hash))
	})
}

func TestIsLowerHex(t *testing.T) {
	assert.True(t, IsLowerHex("0123456789abcdef"))
	assert.False(t, IsLowerHex(""))
	assert.False(t, IsLowerHex("ABCDEF"))
	assert.False(t, IsLowerHex("xyz"))
}
