// Package id generates identifiers and share tokens.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ShareTokenLength is the length of a public share token.
const ShareTokenLength = 20

// Prefixes for entity ids.
const (
	PrefixUser    = "user"
	PrefixTag     = "tag"
	PrefixContent = "content"
)

// nanoidLength is the length of the random part of an entity id.
const nanoidLength = 21

// Generate creates a prefixed id in the form prefix-nanoid (e.g. "content-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on entropy failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// ShareToken returns an unguessable token of ShareTokenLength characters
// drawn from the 64-symbol URL-safe alphabet.
func ShareToken() (string, error) {
	token, err := gonanoid.New(ShareTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return token, nil
}

// Valid reports whether s looks like an id produced by Generate for prefix.
// Used to reject malformed path parameters before hitting storage.
func Valid(prefix, s string) bool {
	if len(s) != len(prefix)+1+nanoidLength {
		return false
	}
	if s[:len(prefix)+1] != prefix+"-" {
		return false
	}
	for _, r := range s[len(prefix)+1:] {
		if !isAlphabet(r) {
			return false
		}
	}
	return true
}

func isAlphabet(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-'
}
