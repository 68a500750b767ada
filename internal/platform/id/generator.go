package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates entity identifiers.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random v4 UUIDs. Canonical entities keep the same
// identifier shape across Postgres and the in-memory repositories.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return u.String(), nil
}
