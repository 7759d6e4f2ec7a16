package validators

import (
	"strings"
	"unicode"
)

// MaxSearchRunes bounds free-text query values.
const MaxSearchRunes = 120

// SanitizeString trims input, collapses runs of whitespace to one space, drops
// control characters and cuts the result to maxLen runes. Product names are
// often not ASCII, so the cut never splits a character.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	count := 0
	pendingSpace := false
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		case unicode.IsControl(r):
			continue
		}
		if maxLen > 0 && count >= maxLen {
			break
		}
		if pendingSpace {
			if maxLen > 0 && count+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			count++
			pendingSpace = false
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
