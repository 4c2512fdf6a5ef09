package familycode

import "strings"

// Alphabet is the canonical code alphabet. Uppercase only, with the
// visually ambiguous glyphs 0/O and 1/I excluded so codes stay readable
// when shared aloud or written down.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	// GeneratedLength is the fixed length of codes this service issues.
	GeneratedLength = 6

	// MinLength and MaxLength bound the lengths accepted on validation,
	// so codes issued by other backends remain joinable.
	MinLength = 6
	MaxLength = 8
)

// Normalize returns the canonical form of a user-supplied code:
// surrounding whitespace removed, letters uppercased. Comparison and
// storage always use the canonical form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateFormat reports whether code is a well-formed family code:
// length within [MinLength, MaxLength] and every character in the
// canonical alphabet, compared case-insensitively. Pure function with
// no store access.
func ValidateFormat(code string) bool {
	if len(code) < MinLength || len(code) > MaxLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if strings.IndexByte(Alphabet, c) < 0 {
			return false
		}
	}
	return true
}
