package evaluation

import (
	"strings"
	"unicode"
)

// tokenize lowercases the text and splits it into maximal runs of
// letters and digits. Punctuation never forms a token.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
