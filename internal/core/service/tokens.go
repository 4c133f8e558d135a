package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// newSecurityToken returns a 32-character random hex token used for password
// reset and email verification links.
func newSecurityToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("security token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
