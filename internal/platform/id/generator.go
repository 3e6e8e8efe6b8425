package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for audit entries and other external references.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 values so audit rows sort by creation.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return value.String(), nil
}

// Static returns the same id every call; used by tests that assert on audit payloads.
type Static string

func (s Static) NewID() (string, error) {
	return string(s), nil
}
