package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateSecureRandomString generates a cryptographically secure random string of the specified byte length,
// then hex encodes it. For example, lengthInBytes=32 will result in a 64-character hex string.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateReferenceNumber produces a unique transaction reference number of the
// form TXN-20060102150405-ABCDEF123456. The random suffix makes collisions under
// concurrent posting practically impossible; the DB unique constraint is the
// final arbiter.
func GenerateReferenceNumber(now time.Time) (string, error) {
	suffix, err := GenerateSecureRandomString(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102150405"), strings.ToUpper(suffix)), nil
}
