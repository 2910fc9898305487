package utils

import (
	"crypto/rand"
	"strings"
)

// InviteCodeLength is the fixed length of session invite codes.
const InviteCodeLength = 6

const inviteCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewInviteCode draws a random uppercase alphanumeric code. Uniqueness
// is the caller's problem: codes are checked against the sessions
// table and redrawn on collision.
func NewInviteCode() string {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic("invite code: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = inviteCodeCharset[int(b)%len(inviteCodeCharset)]
	}
	return string(buf)
}

// NormalizeInviteCode canonicalizes user input before lookup.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
