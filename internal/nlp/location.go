package nlp

import "strings"

// ExtractLocation returns the phrase introduced by the first location anchor
// ("ở", "tại"), truncated at the first stop token after it: the reminder
// lead-in, a time lead-in, a relative-day token, or a comma. Returns the
// empty string when no anchor is present; an empty result is a valid
// outcome, not an error.
func (e *Extractor) ExtractLocation(text string) string {
	m := e.locationRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	loc := strings.TrimSpace(m[2])
	loc = truncateAtFirst(loc, e.locationStops)
	return strings.TrimSpace(loc)
}
