// Package idgenerator contains the default [domain.IDGenerator]
// implementation, minting document-store style alphanumeric identifiers
// from random bytes.
package idgenerator

import (
	"crypto/rand"
	"io"

	"github.com/porolink/porobase/domain"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength matches the identifier length the native document store
// assigns to auto-generated documents.
const DefaultLength = 20

// IDGenerator implements [domain.IDGenerator].
type IDGenerator struct {
	reader io.Reader
}

// NewIDGenerator returns a new implementation of [domain.IDGenerator].
func NewIDGenerator(opts ...Option) domain.IDGenerator {
	g := IDGenerator{reader: rand.Reader}
	for _, opt := range opts {
		opt(&g)
	}
	return &g
}

// GenerateID implements [domain.IDGenerator]. Bytes are mapped onto the
// alphabet rejection-free by discarding values that would bias the tail.
func (g *IDGenerator) GenerateID(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	res := make([]byte, 0, length)
	buf := make([]byte, length*2)

	// 248 is the largest multiple of len(alphabet) below 256; byte values
	// at or above it are rejected to keep the distribution uniform.
	limit := byte(256 - 256%len(alphabet))
	for len(res) < length {
		if _, err := io.ReadFull(g.reader, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			res = append(res, alphabet[int(b)%len(alphabet)])
			if len(res) == length {
				break
			}
		}
	}
	return string(res), nil
}
