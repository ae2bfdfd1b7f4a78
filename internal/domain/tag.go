package domain

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Tag is a global label shared by every user. Title is unique and kept as entered
// (case-sensitive), apart from trimming and NFC normalisation.
type Tag struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeTagTitle trims surrounding whitespace and applies Unicode NFC so that
// composed and decomposed spellings of the same title resolve to one tag.
// Returns "" for blank input.
func NormalizeTagTitle(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
