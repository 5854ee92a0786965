// Package id generates prefixed random identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	SessionPrefix = "sess"
	RequestPrefix = "req"
)

// Generate creates an ID of the form prefix-nanoid, e.g. "sess-V1StGXR8_Z5jdHi6B-myT".
// The nanoid part is 21 URL-safe characters.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() (string, error) {
	return Generate(SessionPrefix)
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	nid, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return nid
}
