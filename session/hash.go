package session

import (
	"crypto/sha256"
	"encoding/hex"
)

func hash(b []byte) []byte {
	hash := sha256.Sum256(b)

	return hash[:]
}

func hashString(s string) string {
	return hex.EncodeToString(hash([]byte(s)))
}
