package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// runIDBytes gives ~96 bits of randomness per run id, enough that
// concurrent runs never collide in practice.
const runIDBytes = 12

// IDGenerator provides cryptographically secure identifier generation.
type IDGenerator struct{}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Random generates a URL-safe base64 string from length random bytes.
func (g *IDGenerator) Random(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// RunID generates a run plan identifier.
func (g *IDGenerator) RunID() (string, error) {
	return g.Random(runIDBytes)
}
