package game

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CodeAlphabet omits I, O, 0 and 1 so codes survive being read aloud.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	MinCodeLength = 4
	MaxCodeLength = 6
)

// NewCode returns a random game code of the given length.
func NewCode(length int) (string, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		length = MinCodeLength
	}
	return gonanoid.Generate(CodeAlphabet, length)
}

// NormalizeCode upper-cases and trims user input so lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code is a well-formed, already normalised game code.
func ValidCode(code string) bool {
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			return false
		}
	}
	return true
}
