package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// generateAccessCode returns a uniform 6-digit code in 100000..999999.
func generateAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// generateSetupToken returns 128 bits of entropy, hex encoded.
func generateSetupToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
