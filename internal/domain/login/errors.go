package login

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is unknown,
	// expired, or already consumed.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCodeRejected marks a gateway rejection of the submitted SMS
	// code, as opposed to a transport fault.
	ErrCodeRejected = errors.New("sms code rejected")
)
