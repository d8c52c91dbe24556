package nlp

import (
	"strconv"
	"time"
)

// dateRule is one entry in the ordered date-resolution table. Rules are
// evaluated top to bottom; the first rule that reports ok wins.
type dateRule struct {
	name    string
	resolve func(e *Extractor, text string, ref time.Time) (time.Time, bool)
}

// periodRule is one entry in the ordered day-period adjustment table.
// Only the first rule whose cue word appears in the text is applied.
type periodRule struct {
	name     string
	keywords []string
	apply    func(hour int) int
}

// ResolveDateTime resolves the calendar date and the time-of-day named in
// text against the reference instant and combines them into one absolute
// timestamp, seconds always zero. Total: every input yields a timestamp,
// absent cues fall back to the reference date and 10:00.
func (e *Extractor) ResolveDateTime(text string, ref time.Time) time.Time {
	day := e.resolveDate(text, ref)
	hour, minute := e.resolveTimeOfDay(text)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, ref.Location())
}

// resolveDate walks the date rule table in order: explicit date literal,
// then relative-day keywords, then the reference date unchanged.
func (e *Extractor) resolveDate(text string, ref time.Time) time.Time {
	for _, rule := range e.dateRules {
		if t, ok := rule.resolve(e, text, ref); ok {
			return t
		}
	}
	return ref
}

// buildDateRules assembles the date precedence table. The order here is the
// precedence contract: an explicit literal beats every relative keyword, and
// "hôm nay" beats "mai" inside "ngày mai hôm nay"-style pileups.
func buildDateRules() []dateRule {
	return []dateRule{
		{name: "explicit_date", resolve: (*Extractor).resolveExplicitDate},
		{name: "today", resolve: relativeDays(func(l Lexicon) []string { return l.Today }, 0)},
		{name: "tomorrow", resolve: relativeDays(func(l Lexicon) []string { return l.Tomorrow }, 1)},
		{name: "day_after_tomorrow", resolve: relativeDays(func(l Lexicon) []string { return l.DayAfterTomorrow }, 2)},
		{name: "weekend", resolve: (*Extractor).resolveWeekend},
		{name: "weekday", resolve: (*Extractor).resolveWeekday},
	}
}

// resolveExplicitDate matches D[/-]M with an optional 2–4 digit year.
// Two-digit years are promoted by adding 2000. A day/month combination that
// is not a real calendar date is treated as no match so resolution falls
// through to the relative-day rules.
func (e *Extractor) resolveExplicitDate(text string, ref time.Time) (time.Time, bool) {
	m := e.dateRE.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := ref.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())
	// time.Date normalizes overflow (31/2 becomes 2/3 or 3/3); a changed
	// component means the literal was not a valid calendar date.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// relativeDays builds a rule that adds a fixed day offset when any of the
// lexicon keywords selected by pick appears in the text.
func relativeDays(pick func(Lexicon) []string, offset int) func(*Extractor, string, time.Time) (time.Time, bool) {
	return func(e *Extractor, text string, ref time.Time) (time.Time, bool) {
		if containsAny(text, pick(e.lex)) {
			return ref.AddDate(0, 0, offset), true
		}
		return time.Time{}, false
	}
}

// resolveWeekend resolves to the coming Sunday: ref + (6 − weekday), with
// Monday counted as weekday 0. On a Sunday reference this is the same day.
func (e *Extractor) resolveWeekend(text string, ref time.Time) (time.Time, bool) {
	if !containsAny(text, e.lex.Weekend) {
		return time.Time{}, false
	}
	return ref.AddDate(0, 0, 6-mondayWeekday(ref)), true
}

// resolveWeekday resolves a named weekday to its next occurrence strictly
// after the reference day: naming the reference's own weekday means next
// week, never today.
func (e *Extractor) resolveWeekday(text string, ref time.Time) (time.Time, bool) {
	today := mondayWeekday(ref)
	for _, wd := range e.lex.Weekdays {
		if !containsAny(text, []string{wd.Keyword}) {
			continue
		}
		diff := wd.Offset - today
		if diff <= 0 {
			diff += 7
		}
		return ref.AddDate(0, 0, diff), true
	}
	return time.Time{}, false
}

// mondayWeekday returns the weekday with Monday = 0 .. Sunday = 6.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// resolveTimeOfDay captures hour, hour marker, and optional minute; absent a
// match the defaults apply. A single day-period adjustment then corrects
// 1–11 o'clock values written in 12-hour style.
func (e *Extractor) resolveTimeOfDay(text string) (hour, minute int) {
	hour, minute = e.defaults.Hour, e.defaults.Minute
	if m := e.timeRE.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute = 0
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
	}

	for _, rule := range e.periodRules {
		if containsAny(text, rule.keywords) {
			hour = rule.apply(hour)
			break
		}
	}
	return hour, minute
}

// buildPeriodRules assembles the day-period adjustment table. Evaluation
// order is the precedence contract: evening/night beats afternoon beats noon
// beats morning, and exactly one rule fires. Hours outside 1–11 are already
// unambiguous and never adjusted; noon keeps a literal 12 as-is.
func buildPeriodRules(lex Lexicon) []periodRule {
	addTwelve := func(hour int) int {
		if hour >= 1 && hour <= 11 {
			return hour + 12
		}
		return hour
	}
	return []periodRule{
		{name: "evening", keywords: lex.EveningWords, apply: addTwelve},
		{name: "afternoon", keywords: lex.AfternoonWords, apply: addTwelve},
		{name: "noon", keywords: lex.NoonWords, apply: func(hour int) int {
			if hour == 12 {
				return hour
			}
			return addTwelve(hour)
		}},
		{name: "morning", keywords: lex.MorningWords, apply: func(hour int) int { return hour }},
	}
}
