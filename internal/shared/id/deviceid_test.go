package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceID(t *testing.T) {
	deviceID, err := NewDeviceID()
	require.NoError(t, err)
	assert.Len(t, deviceID, DeviceIDLength)
	assert.Regexp(t, "^[0-9a-f]+$", deviceID)
}

func TestNewDeviceIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		deviceID, err := NewDeviceID()
		require.NoError(t, err)
		assert.False(t, seen[deviceID], "duplicate device id %s", deviceID)
		seen[deviceID] = true
	}
}

func TestGenerateRejectsBadParameters(t *testing.T) {
	_, err := Generate("", 10)
	assert.Error(t, err)

	_, err = Generate("abc", 0)
	assert.Error(t, err)

	_, err = Generate("abc", -1)
	assert.Error(t, err)
}

func TestGenerateUsesAlphabet(t *testing.T) {
	s, err := Generate("ab", 64)
	require.NoError(t, err)
	assert.Len(t, s, 64)
	assert.Regexp(t, "^[ab]+$", s)
}
