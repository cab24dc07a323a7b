// Package id generates random identifiers for provider interactions.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// hexAlphabet is the character set for device identities. The upstream
	// gateway expects a lowercase 40-character hex string.
	hexAlphabet = "0123456789abcdef"

	// DeviceIDLength is the length of a generated device identity.
	DeviceIDLength = 40
)

// Generate creates a cryptographically random string of the given length
// drawn from the given alphabet.
func Generate(alphabet string, length int) (string, error) {
	if length <= 0 || alphabet == "" {
		return "", fmt.Errorf("invalid id parameters: alphabet %q, length %d", alphabet, length)
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// NewDeviceID creates a fresh device identity. Each login attempt gets its
// own identity; it is never derived from the phone number or reused across
// sessions.
func NewDeviceID() (string, error) {
	return Generate(hexAlphabet, DeviceIDLength)
}

// MustNewDeviceID creates a device identity and panics on error.
// crypto/rand only fails when the platform entropy source is broken.
func MustNewDeviceID() string {
	deviceID, err := NewDeviceID()
	if err != nil {
		panic(err)
	}
	return deviceID
}
