// Package nlp converts free-form Vietnamese sentences into structured
// schedule events.
//
// The pipeline is rule-based and runs in a single pass over the normalized
// input:
// - Temporal resolution ("lúc 10h sáng mai", "20/11", "thứ hai")
// - Location capture ("ở phòng 302", "tại nhà")
// - Reminder lead-time ("nhắc trước 15 phút", "nhắc trước 2 giờ")
// - Title extraction (verb + noun phrase, "họp nhóm môn ai")
//
// Every extraction is a total function: missing or malformed cues fall back
// to the defaults below instead of failing, so any sentence produces a
// usable event. Given the same sentence and reference instant the result is
// identical on every call, which is what makes the pipeline testable.
package nlp

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"
)

// TimeLayout is the wire format for timestamps: ISO-8601 at second
// precision with no zone offset, matching what the store persists.
const TimeLayout = "2006-01-02T15:04:05"

// Defaults substituted when a pattern is not found in the input.
const (
	// DefaultHour and DefaultMinute apply when no time-of-day is written.
	DefaultHour   = 10
	DefaultMinute = 0

	// DefaultReminderMinutes applies when no reminder lead-in is written.
	DefaultReminderMinutes = 10
)

// ExtractedEvent is the structured record produced from one sentence.
type ExtractedEvent struct {
	Title           string     // never empty; placeholder when nothing matched
	StartTime       time.Time  // always fully specified, seconds zero
	EndTime         *time.Time // never inferred; always nil
	Location        string     // empty when no anchor phrase was found
	ReminderMinutes int
	RawText         string // verbatim original input, for audit
}

// MarshalJSON renders the flat mapping consumed by the store and the MCP
// surface. The title is serialized under the key "event".
func (e ExtractedEvent) MarshalJSON() ([]byte, error) {
	var end *string
	if e.EndTime != nil {
		s := e.EndTime.Format(TimeLayout)
		end = &s
	}
	return json.Marshal(struct {
		Event           string  `json:"event"`
		StartTime       string  `json:"start_time"`
		EndTime         *string `json:"end_time"`
		Location        string  `json:"location"`
		ReminderMinutes int     `json:"reminder_minutes"`
		RawText         string  `json:"raw_text"`
	}{e.Title, e.StartTime.Format(TimeLayout), end, e.Location, e.ReminderMinutes, e.RawText})
}

// Defaults is the consolidated defaults table: the values substituted when
// a pattern is not found in the input.
type Defaults struct {
	Hour            int
	Minute          int
	ReminderMinutes int
}

// StandardDefaults returns the stock defaults table.
func StandardDefaults() Defaults {
	return Defaults{Hour: DefaultHour, Minute: DefaultMinute, ReminderMinutes: DefaultReminderMinutes}
}

// Extractor runs the extraction pipeline for one lexicon. It is immutable
// after construction and safe for concurrent use.
type Extractor struct {
	lex      Lexicon
	defaults Defaults

	dateRE     *regexp.Regexp
	timeRE     *regexp.Regexp
	reminderRE *regexp.Regexp
	locationRE *regexp.Regexp
	titleRE    *regexp.Regexp

	dateRules   []dateRule
	periodRules []periodRule

	// Stop-token sets bounding captured phrases; first occurrence wins.
	locationStops []string
	titleStops    []string
}

// Option configures an Extractor at construction time.
type Option func(*Extractor)

// WithLexicon supplies an alternate vocabulary.
func WithLexicon(lex Lexicon) Option {
	return func(e *Extractor) { e.lex = lex }
}

// WithDefaults replaces the whole defaults table.
func WithDefaults(d Defaults) Option {
	return func(e *Extractor) { e.defaults = d }
}

// WithDefaultReminder overrides only the reminder lead-time default.
func WithDefaultReminder(minutes int) Option {
	return func(e *Extractor) {
		if minutes >= 0 {
			e.defaults.ReminderMinutes = minutes
		}
	}
}

// New creates an extractor with the default Vietnamese lexicon, optionally
// customized.
func New(opts ...Option) *Extractor {
	e := &Extractor{lex: VietnameseLexicon(), defaults: StandardDefaults()}
	for _, opt := range opts {
		opt(e)
	}
	e.compile()
	return e
}

// compile builds the pattern tables for the configured lexicon.
func (e *Extractor) compile() {
	lex := e.lex

	e.dateRE = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?`)
	e.timeRE = regexp.MustCompile(`(\d{1,2})\s*(` + quoteAlternation(lex.HourMarkers) + `)\s*(\d{1,2})?`)

	units := append(append([]string{}, lex.MinuteUnits...), lex.HourUnits...)
	e.reminderRE = regexp.MustCompile(
		regexp.QuoteMeta(lex.ReminderLeadIn) + `\s+(\d+)\s*(` + quoteAlternation(units) + `)?`)

	e.locationRE = regexp.MustCompile(`(` + quoteAlternation(lex.LocationAnchors) + `)\s+(.+)`)

	// Location phrases end at the reminder lead-in, a time lead-in, a
	// relative-day token, or a comma.
	e.locationStops = append(e.locationStops, lex.ReminderLeadIn)
	e.locationStops = append(e.locationStops, lex.TimeLeadIns...)
	e.locationStops = append(e.locationStops, lex.RelativeDayTokens...)
	e.locationStops = append(e.locationStops, ",")

	// Title phrases end at a time lead-in, a location anchor, the reminder
	// lead-in, or a comma.
	e.titleStops = append(e.titleStops, lex.TimeLeadIns...)
	e.titleStops = append(e.titleStops, lex.LocationAnchors...)
	e.titleStops = append(e.titleStops, lex.ReminderLeadIn)
	e.titleStops = append(e.titleStops, ",")

	e.titleRE = regexp.MustCompile(
		`(` + verbAlternation(lex.Verbs) + `)\s+([^,.;]*?)(` + boundaryAlternation(e.titleStops) + `|$)`)

	e.dateRules = buildDateRules()
	e.periodRules = buildPeriodRules(lex)
}

// TextToEvent runs the whole pipeline on one sentence. A zero ref resolves
// relative dates against the current wall clock; callers pass an explicit
// reference instant to make results reproducible.
func (e *Extractor) TextToEvent(raw string, ref time.Time) ExtractedEvent {
	if ref.IsZero() {
		ref = time.Now()
	}

	text := Normalize(raw)

	title := e.ExtractTitle(text, raw)
	if title == "" {
		title = e.lex.PlaceholderTitle
	}

	return ExtractedEvent{
		Title:           title,
		StartTime:       e.ResolveDateTime(text, ref),
		EndTime:         nil,
		Location:        e.ExtractLocation(text),
		ReminderMinutes: e.ExtractReminderMinutes(text),
		RawText:         raw,
	}
}

var defaultExtractor = New()

// TextToEvent runs the default Vietnamese extractor.
func TextToEvent(raw string, ref time.Time) ExtractedEvent {
	return defaultExtractor.TextToEvent(raw, ref)
}

// quoteAlternation joins literal tokens into a regexp alternation,
// preserving slice order (the first alternative wins on overlap).
func quoteAlternation(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

// verbAlternation orders verbs longest-first before joining so a short verb
// never shadows a longer one that shares its prefix.
func verbAlternation(verbs []string) string {
	seen := make(map[string]bool, len(verbs))
	uniq := make([]string, 0, len(verbs))
	for _, v := range verbs {
		if !seen[v] {
			seen[v] = true
			uniq = append(uniq, v)
		}
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return len([]rune(uniq[i])) > len([]rune(uniq[j]))
	})
	return quoteAlternation(uniq)
}

// boundaryAlternation renders stop tokens as phrase boundaries: keyword
// stops must follow whitespace, a comma stands alone.
func boundaryAlternation(stops []string) string {
	parts := make([]string, 0, len(stops))
	for _, s := range stops {
		if s == "," {
			parts = append(parts, ",")
			continue
		}
		parts = append(parts, `\s+`+regexp.QuoteMeta(s))
	}
	return strings.Join(parts, "|")
}

// truncateAtFirst cuts s at the first occurrence of any stop token,
// scanning left to right; the earliest match wins regardless of which
// token it is.
func truncateAtFirst(s string, stops []string) string {
	cut := len(s)
	for _, stop := range stops {
		if idx := strings.Index(s, stop); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return s[:cut]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
