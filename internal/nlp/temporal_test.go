package nlp

import (
	"testing"
	"time"
)

// refMonday is 2025-11-03, a Monday, at 08:00.
var refMonday = time.Date(2025, 11, 3, 8, 0, 0, 0, time.Local)

func TestResolveDateTime(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		// Relative-day keywords
		{"today keeps date", "họp hôm nay", date(2025, 11, 3, 10, 0)},
		{"tomorrow", "họp ngày mai", date(2025, 11, 4, 10, 0)},
		{"bare mai", "họp sáng mai", date(2025, 11, 4, 10, 0)},
		{"day after tomorrow", "họp ngày mốt", date(2025, 11, 5, 10, 0)},
		{"day after tomorrow alt", "họp ngày kia", date(2025, 11, 5, 10, 0)},
		{"weekend is coming sunday", "đi siêu thị cuối tuần", date(2025, 11, 9, 10, 0)},
		{"named weekday", "học bài thứ năm", date(2025, 11, 6, 10, 0)},
		{"sunday by name", "đi chơi chủ nhật", date(2025, 11, 9, 10, 0)},
		{"ascii weekday variant", "họp chu nhat", date(2025, 11, 9, 10, 0)},
		{"no cue defaults to reference date", "họp nhóm", date(2025, 11, 3, 10, 0)},

		// Explicit dates
		{"slash date", "đi khám 20/11", date(2025, 11, 20, 10, 0)},
		{"dash date", "đi khám 20-11", date(2025, 11, 20, 10, 0)},
		{"date with full year", "nộp bài 1-1-2026", date(2026, 1, 1, 10, 0)},
		{"two digit year promoted", "nộp bài 20/11/26", date(2026, 11, 20, 10, 0)},
		{"explicit date beats relative keyword", "mai 20/11", date(2025, 11, 20, 10, 0)},
		{"invalid calendar date falls through", "họp 31/2 ngày mai", date(2025, 11, 4, 10, 0)},
		{"month out of range falls through", "họp 5/13 hôm nay", date(2025, 11, 3, 10, 0)},

		// Times of day
		{"hour with h marker", "họp lúc 9h", date(2025, 11, 3, 9, 0)},
		{"hour and minute compact", "họp lúc 10h30", date(2025, 11, 3, 10, 30)},
		{"hour word marker", "ăn lúc 8 giờ", date(2025, 11, 3, 8, 0)},
		{"colon time", "học lúc 19:30", date(2025, 11, 3, 19, 30)},
		{"no time defaults", "họp nhóm hôm nay", date(2025, 11, 3, 10, 0)},

		// Day-period adjustment
		{"evening shifts", "ăn lúc 8 giờ tối", date(2025, 11, 3, 20, 0)},
		{"night shifts", "về lúc 11h đêm", date(2025, 11, 3, 23, 0)},
		{"afternoon shifts", "họp lúc 3 giờ chiều", date(2025, 11, 3, 15, 0)},
		{"noon shifts small hours", "ăn lúc 1h trưa", date(2025, 11, 3, 13, 0)},
		{"noon keeps twelve", "ăn lúc 12 giờ trưa", date(2025, 11, 3, 12, 0)},
		{"morning is no-op", "họp lúc 7h sáng", date(2025, 11, 3, 7, 0)},
		{"no adjustment above twelve", "họp lúc 14h chiều", date(2025, 11, 3, 14, 0)},
		{"default hour still shifts", "ăn tối nay", date(2025, 11, 3, 22, 0)},

		// Combined
		{"full sentence", "nhắc tôi họp nhóm lúc 10h sáng mai ở phòng 302, nhắc trước 15 phút", date(2025, 11, 4, 10, 0)},
		{"weekday with time", "học bài môn ai lúc 19:30 thứ hai", date(2025, 11, 10, 19, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ResolveDateTime(Normalize(tt.text), refMonday)
			if !got.Equal(tt.want) {
				t.Errorf("ResolveDateTime(%q) = %s, want %s",
					tt.text, got.Format(TimeLayout), tt.want.Format(TimeLayout))
			}
		})
	}
}

// TestWeekdayRollover checks that naming the reference's own weekday means
// next week, never the same day.
func TestWeekdayRollover(t *testing.T) {
	e := New()

	got := e.ResolveDateTime("họp thứ hai", refMonday)
	want := date(2025, 11, 10, 10, 0)
	if !got.Equal(want) {
		t.Errorf("same-weekday mention resolved to %s, want %s (one week later)",
			got.Format(TimeLayout), want.Format(TimeLayout))
	}
}

func TestWeekendOnSunday(t *testing.T) {
	e := New()

	// 2025-11-09 is a Sunday; the coming Sunday is that same day.
	sunday := time.Date(2025, 11, 9, 8, 0, 0, 0, time.Local)
	got := e.ResolveDateTime("đi chơi cuối tuần", sunday)
	want := date(2025, 11, 9, 10, 0)
	if !got.Equal(want) {
		t.Errorf("weekend on a Sunday resolved to %s, want %s",
			got.Format(TimeLayout), want.Format(TimeLayout))
	}
}

// TestSecondsAlwaysZero verifies the resolver truncates below the minute.
func TestSecondsAlwaysZero(t *testing.T) {
	e := New()

	ref := time.Date(2025, 11, 3, 8, 42, 17, 999, time.Local)
	got := e.ResolveDateTime("họp lúc 9h15", ref)
	if got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("resolved time has sub-minute precision: %v", got)
	}
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}
