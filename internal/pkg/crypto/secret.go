// Package crypto provides cryptographic utilities for Agora.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SigningSecretSize is the number of random bytes in a generated signing secret.
// It matches the HS256 output size.
const SigningSecretSize = 32

// GenerateSigningSecret returns SigningSecretSize random bytes, base64 encoded.
func GenerateSigningSecret() (string, error) {
	key := make([]byte, SigningSecretSize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// IsWeakSecret reports whether secret is shorter than SigningSecretSize bytes.
func IsWeakSecret(secret string) bool {
	return len(secret) < SigningSecretSize
}
