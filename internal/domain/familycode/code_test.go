package familycode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	cases := []struct {
		name  string
		code  string
		valid bool
	}{
		{"six chars", "ABC234", true},
		{"seven chars", "ABC2345", true},
		{"eight chars", "ABC23456", true},
		{"lowercase accepted", "abc234", true},
		{"mixed case accepted", "aBc234", true},
		{"too short", "ABC23", false},
		{"too long", "ABC234567", false},
		{"empty", "", false},
		{"embedded space", "ABC 34", false},
		{"ambiguous zero", "ABC034", false},
		{"ambiguous oh", "ABCO34", false},
		{"ambiguous one", "ABC134", false},
		{"ambiguous eye", "ABCI34", false},
		{"punctuation", "ABC-34", false},
		{"unicode", "ABC2Ω4", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, ValidateFormat(tc.code))
		})
	}
}

func TestValidateFormatIsIdempotent(t *testing.T) {
	for _, code := range []string{"ABC234", "abc034", "bad", ""} {
		first := ValidateFormat(code)
		second := ValidateFormat(code)
		require.Equal(t, first, second)
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "ABC234", Normalize("  abc234\t"))
	require.Equal(t, "ZXCVBN", Normalize("zxcvbn"))
	require.Equal(t, "", Normalize("   "))
}

func TestAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, c := range "0O1Il" {
		require.NotContains(t, Alphabet, string(c))
	}
	require.Len(t, Alphabet, 32)
}
