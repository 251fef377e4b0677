// Package auth provides API key generation, admin token hashing and
// request-context helpers.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/mailcast/mailcast/internal/model"
)

// Key format: 35 characters drawn uniformly from KeyAlphabet.
// Example: 4x0k-m2t9qv8s-7hjw1e3n5zcp6-ab0yrd
const (
	KeyLength   = 35
	KeyAlphabet = "abcdefghijklmnopqrstuvwxyz-0123456789"
)

var alphabetSize = big.NewInt(int64(len(KeyAlphabet)))

// GenerateAPIKey creates a new random API key.
// Uniqueness against existing keys is not checked here.
func GenerateAPIKey() (model.APIKey, error) {
	buf := make([]byte, KeyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		buf[i] = KeyAlphabet[n.Int64()]
	}
	return model.APIKey(buf), nil
}
