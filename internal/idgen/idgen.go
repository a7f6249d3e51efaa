// Package idgen produces opaque identifiers for transactions.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewTransactionID returns a random UUID in its 32 hex digit form.
func (g *UUIDGenerator) NewTransactionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
