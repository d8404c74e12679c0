package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// CodeChars leaves out characters that are easy to confuse (0/O, 1/I).
	CodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength = 6
)

// GenerateCode returns a random room code.
func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	alphabet := big.NewInt(int64(len(CodeChars)))
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		code[i] = CodeChars[n.Int64()]
	}
	return string(code), nil
}

// NormalizeCode canonicalizes a user-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
