package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey creates a secure random API key and its SHA256 hash.
// The raw key is shown to the caller once; only the hash is stored.
func GenerateAPIKey() (realKey, keyHash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	realKey = fmt.Sprintf("csh_live_%s", hex.EncodeToString(bytes))

	hash := sha256.Sum256([]byte(realKey))
	return realKey, hex.EncodeToString(hash[:]), nil
}

// HashKey returns the SHA256 hex digest stored and compared against.
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// ValidateKey checks a provided key against the stored hash in constant time.
func ValidateKey(providedKey, storedHash string) bool {
	return hmac.Equal([]byte(HashKey(providedKey)), []byte(storedHash))
}
