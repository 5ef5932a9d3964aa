package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// DeviceCodeLength is the number of hex characters in a device code.
const DeviceCodeLength = 40

// DeviceCodeIDLength is the suffix of the device code kept in clear for lookup.
const DeviceCodeIDLength = 8

// Letters exclude I, L and O so codes survive being read aloud.
const userCodeLetters = "ABCDEFGHJKMNPQRSTUVWXYZ"

const digits = "0123456789"

// GenerateDeviceCode returns a 40 hex character device code from 20 random bytes.
func GenerateDeviceCode() (string, error) {
	b, err := CryptoRandomBytes(DeviceCodeLength / 2)
	if err != nil {
		return "", fmt.Errorf("failed to generate device code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// DeviceCodeID returns the lookup suffix of a device code.
func DeviceCodeID(deviceCode string) string {
	if len(deviceCode) < DeviceCodeIDLength {
		return deviceCode
	}
	return deviceCode[len(deviceCode)-DeviceCodeIDLength:]
}

// IsDeviceCodeFormat reports whether s looks like a device code.
func IsDeviceCodeFormat(s string) bool {
	return len(s) == DeviceCodeLength && IsLowerHex(s)
}

// GenerateUserCode returns a code of the form XXXX-NNNN: four unambiguous
// letters, a dash, four digits.
func GenerateUserCode() (string, error) {
	letters, err := randomFrom(userCodeLetters, 4)
	if err != nil {
		return "", err
	}
	nums, err := randomFrom(digits, 4)
	if err != nil {
		return "", err
	}
	return letters + "-" + nums, nil
}

// GenerateCode6 returns six random decimal digits.
func GenerateCode6() (string, error) {
	return randomFrom(digits, 6)
}

// NormalizeUserCode uppercases input, drops whitespace and inserts the dash
// for the 8 character form. The result is not guaranteed to be valid.
func NormalizeUserCode(input string) string {
	code := strings.ToUpper(strings.Join(strings.Fields(input), ""))
	if len(code) == 8 && !strings.Contains(code, "-") {
		code = code[:4] + "-" + code[4:]
	}
	return code
}

// IsUserCodeFormat reports whether code matches XXXX-NNNN.
func IsUserCodeFormat(code string) bool {
	if len(code) != 9 || code[4] != '-' {
		return false
	}
	for i := 0; i < 4; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	for i := 5; i < 9; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func randomFrom(charset string, n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}
