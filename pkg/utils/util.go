package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// PasetoKeySize is the key length PASETO v2 local requires.
const PasetoKeySize = 32

// GenerateBase64Key returns a random PASETO key, URL-safe base64 encoded.
func GenerateBase64Key(size int) (string, error) {
	if size != PasetoKeySize {
		return "", fmt.Errorf("PASETO v2 local requires a %d-byte key", PasetoKeySize)
	}

	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}

	return base64.URLEncoding.EncodeToString(key), nil
}

// DecodeBase64Key decodes a key written by GenerateBase64Key. Standard base64
// is accepted too.
func DecodeBase64Key(s string) ([]byte, error) {
	key, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		if key, err = base64.StdEncoding.DecodeString(s); err != nil {
			return nil, fmt.Errorf("key is not valid base64: %w", err)
		}
	}
	if len(key) != PasetoKeySize {
		return nil, fmt.Errorf("key must decode to %d bytes, got %d", PasetoKeySize, len(key))
	}
	return key, nil
}
