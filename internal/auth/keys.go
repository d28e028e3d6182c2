// Package auth provides password hashing and the tokens used for sessions and email links.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength = 32
	// Expected hex-encoded length (32 bytes = 64 hex characters).
	keyHexLength = 64

	urlTokenKeyFile = "url-token.key"
)

// LoadOrGenerateKey loads the URL token key from <dataPath>/url-token.key,
// generating and saving a new one if the file does not exist.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, urlTokenKeyFile)

	//#nosec G304 -- key path is derived from the configured data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))

		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid url token key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}

		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid url token key format: not valid hex: %w", err)
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read url token key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate url token key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save url token key: %w", err)
	}

	return key, nil
}
