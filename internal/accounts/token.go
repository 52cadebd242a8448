package accounts

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenEntropy matches a 32-byte URL-safe token.
const tokenEntropy = 32

// GenerateToken returns a cryptographically random, URL-safe opaque token.
// Uniqueness is enforced at the storage layer; a collision surfaces as a
// constraint error to the caller rather than being retried here.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenEntropy)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("accounts: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
