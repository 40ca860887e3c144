package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// DefaultCodeLength is the length of generated pledge codes
	DefaultCodeLength = 7

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type randomCodeGenerator struct {
	length int
}

// NewCodeGenerator returns a generator of fixed-length uppercase
// alphanumeric codes
func NewCodeGenerator(length int) CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &randomCodeGenerator{length: length}
}

func (g *randomCodeGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate pledge code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
