package nlp

import "strings"

// ExtractTitle derives the event title from the normalized sentence.
//
// Tier 1 strips a leading "nhắc tôi"-style prefix, then matches the first
// verb from the closed lexicon followed by a noun phrase bounded by the stop
// tokens (time lead-in, location anchor, reminder lead-in, comma, or end of
// sentence). Tier 2, when no verb matches, joins the first three word tokens
// of the raw (non-lowercased) input. Returns the empty string only when the
// raw input has no tokens at all; the caller substitutes the placeholder.
func (e *Extractor) ExtractTitle(text, raw string) string {
	stripped := e.stripRemindPrefix(text)

	if m := e.titleRE.FindStringSubmatch(stripped); m != nil {
		verb := m[1]
		rest := strings.TrimSpace(m[2])
		return strings.TrimSpace(verb + " " + rest)
	}

	// Coarse fallback: the raw input keeps its original casing so the title
	// reads the way the user typed it.
	tokens := strings.Fields(raw)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return strings.Join(tokens, " ")
}

// stripRemindPrefix removes one leading remind-me phrase, longest first so
// "nhắc tôi" is not half-stripped by the bare "nhắc" form.
func (e *Extractor) stripRemindPrefix(text string) string {
	for _, p := range e.lex.RemindPrefixes {
		if strings.HasPrefix(text, p) {
			return strings.TrimSpace(text[len(p):])
		}
	}
	return text
}
