package nlp

import "strings"

// Normalize lower-cases the input, strips leading and trailing whitespace,
// and collapses internal whitespace runs to single spaces. Idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
