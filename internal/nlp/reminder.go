package nlp

import (
	"strconv"
	"strings"
)

// ExtractReminderMinutes returns the reminder lead-time in minutes. The
// pattern is the lead-in phrase followed by a magnitude and an optional unit
// token; hour-family units multiply by 60, everything else (including a
// missing unit) reads as minutes. Without a lead-in phrase the default of
// 10 minutes applies.
func (e *Extractor) ExtractReminderMinutes(text string) int {
	m := e.reminderRE.FindStringSubmatch(text)
	if m == nil {
		return e.defaults.ReminderMinutes
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		// Magnitude too large for an int; treat as no match.
		return e.defaults.ReminderMinutes
	}

	unit := m[2]
	for _, h := range e.lex.HourUnits {
		if strings.HasPrefix(unit, h) {
			return value * 60
		}
	}
	return value
}
