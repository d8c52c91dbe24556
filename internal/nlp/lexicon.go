package nlp

// WeekdayKeyword maps a weekday phrase to its offset from Monday (0 = Monday,
// 6 = Sunday). Entries are matched in slice order.
type WeekdayKeyword struct {
	Keyword string
	Offset  int
}

// Lexicon holds every phrase the extractor recognizes. Matching is exact,
// with no diacritic folding, so a lexicon is tied to one orthography.
// Alternate vocabularies can be supplied through the WithLexicon option.
type Lexicon struct {
	// Relative-day keywords, each list checked in order.
	Today            []string
	Tomorrow         []string
	DayAfterTomorrow []string
	Weekend          []string
	Weekdays         []WeekdayKeyword

	// RelativeDayTokens are the surface tokens that end a captured location
	// phrase when a relative-day expression follows it.
	RelativeDayTokens []string

	// HourMarkers separate the hour from the optional minute ("10h30",
	// "10 giờ 30", "10:30"). Tried in order inside one pattern.
	HourMarkers []string

	// Day-period cue words, in adjustment precedence order.
	EveningWords   []string
	AfternoonWords []string
	NoonWords      []string
	MorningWords   []string

	// LocationAnchors introduce a location phrase ("ở nhà", "tại phòng 302").
	LocationAnchors []string

	// TimeLeadIns introduce a time expression ("lúc 10h", "vào thứ hai").
	TimeLeadIns []string

	// ReminderLeadIn introduces the reminder lead-time ("nhắc trước 15 phút").
	ReminderLeadIn string

	// MinuteUnits and HourUnits classify the reminder unit token. HourUnits
	// match by prefix; anything else counts as minutes.
	MinuteUnits []string
	HourUnits   []string

	// Verbs is the closed verb list for title extraction. Order does not
	// matter here; the extractor sorts longest-first so a short verb never
	// shadows a longer one sharing a prefix.
	Verbs []string

	// RemindPrefixes are leading phrases stripped before verb matching,
	// tried longest-first ("nhắc tôi ăn cơm" → "ăn cơm").
	RemindPrefixes []string

	// PlaceholderTitle is returned when nothing else produces a title.
	PlaceholderTitle string
}

// VietnameseLexicon returns the default Vietnamese vocabulary.
func VietnameseLexicon() Lexicon {
	return Lexicon{
		Today:            []string{"hôm nay"},
		Tomorrow:         []string{"ngày mai", "mai"},
		DayAfterTomorrow: []string{"ngày mốt", "ngày kia"},
		Weekend:          []string{"cuối tuần"},
		Weekdays: []WeekdayKeyword{
			{"thứ hai", 0},
			{"thứ ba", 1},
			{"thứ tư", 2},
			{"thứ năm", 3},
			{"thứ sáu", 4},
			{"thứ bảy", 5},
			{"thứ bẩy", 5},
			{"chủ nhật", 6},
			{"chu nhat", 6},
		},
		RelativeDayTokens: []string{"mai", "nay", "cuối tuần", "thứ "},

		HourMarkers: []string{"h", "giờ", ":"},

		EveningWords:   []string{"tối", "đêm"},
		AfternoonWords: []string{"chiều"},
		NoonWords:      []string{"trưa"},
		MorningWords:   []string{"sáng"},

		LocationAnchors: []string{"ở", "tai", "tại"},
		TimeLeadIns:     []string{"lúc", "vao", "vào"},

		ReminderLeadIn: "nhắc trước",
		MinuteUnits:    []string{"phút", "p", "phut"},
		HourUnits:      []string{"giờ", "gio", "tiếng", "tieng"},

		Verbs: []string{
			"ăn", "di", "đi", "gap", "gặp", "họp", "hop", "lam", "làm",
			"thi", "hoc", "học", "uống", "uong", "mua", "nộp", "nop",
			"xem", "chơi", "choi", "khám", "kham", "chay", "chạy",
		},
		RemindPrefixes: []string{"nhắc tôi", "nhắc mình", "nhắc minh", "nhắc"},

		PlaceholderTitle: "sự kiện",
	}
}
