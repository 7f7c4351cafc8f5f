package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Fingerprint returns a short hex digest of a secret so it can be correlated in logs
// without being written out.
func Fingerprint(secret string) string {
	sum := SumSHA256([]byte(secret))
	return hex.EncodeToString(sum[:6])
}
