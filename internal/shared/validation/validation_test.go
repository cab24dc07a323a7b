package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"13800000000", "19912345678", "15555555555"}
	for _, phone := range valid {
		assert.True(t, IsValidPhoneNumber(phone), "phone %q", phone)
	}

	invalid := []string{
		"",
		"1380000000",
		"138000000001",
		"23800000000",
		"12800000000",
		"1380000000a",
		" 13800000000",
		"13800000000 ",
	}
	for _, phone := range invalid {
		assert.False(t, IsValidPhoneNumber(phone), "phone %q", phone)
	}
}

func TestIsValidSMSCode(t *testing.T) {
	valid := []string{"000000", "123456", "999999"}
	for _, code := range valid {
		assert.True(t, IsValidSMSCode(code), "code %q", code)
	}

	invalid := []string{"", "12345", "1234567", "12345a", "12 456"}
	for _, code := range invalid {
		assert.False(t, IsValidSMSCode(code), "code %q", code)
	}
}
