package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const inviteTokenBytes = 32

// NewInviteToken returns a cryptographically random, URL-safe invite token.
func NewInviteToken() (string, error) {
	raw := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth.NewInviteToken: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
