package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Generator creates opaque IDs and human-shareable join codes.
type Generator interface {
	NewID() (string, error)
	NewJoinCode() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// NewJoinCode returns a six-digit numeric code, zero-padded.
func (g *RandomGenerator) NewJoinCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("read random join code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
