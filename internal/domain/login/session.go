// Package login holds the core types and ports of the phone login flow.
package login

import "time"

// Session is the pending login state created when an SMS code is
// dispatched and consumed when the code is verified.
type Session struct {
	ID          string
	PhoneNumber string
	DeviceID    string
	SecCode     string
	Receipt     *DispatchReceipt
	CreatedAt   time.Time
}

// DispatchReceipt records the context of a successful SMS dispatch. The
// verification call replays it against the gateway.
type DispatchReceipt struct {
	PhoneNumber string
	DeviceID    string
	SecCode     string
	Message     string
}

// Credentials is the authenticated identity returned by code verification.
type Credentials struct {
	Token  string
	UserID string
}

// RoleInfo identifies the player's default role and server.
type RoleInfo struct {
	RoleID   string
	RoleName string
	ServerID string
}
