package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trmanh/nhac/internal/nlp"
	"github.com/trmanh/nhac/internal/remind"
	"github.com/trmanh/nhac/internal/store"
)

func runList(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	anchor := time.Now()
	if on := opts.flags["--on"]; on != "" {
		anchor, err = time.ParseInLocation("2006-01-02", on, time.Local)
		if err != nil {
			return fmt.Errorf("--on must look like 2025-11-03: %w", err)
		}
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	var events []*store.Event
	var label string

	switch {
	case opts.boolFlags["--week"]:
		monday := anchor.AddDate(0, 0, -((int(anchor.Weekday()) + 6) % 7))
		events, err = s.EventsInWeek(ctx, monday)
		label = fmt.Sprintf("week of %s", monday.Format("2006-01-02"))
	case opts.boolFlags["--month"]:
		events, err = s.EventsInMonth(ctx, anchor.Year(), anchor.Month())
		label = anchor.Format("2006-01")
	default:
		events, err = s.EventsOnDay(ctx, anchor)
		label = anchor.Format("2006-01-02")
	}
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Printf("No events for %s\n", label)
		return nil
	}

	fmt.Printf("Events for %s:\n", label)
	for _, e := range events {
		printEvent(e)
	}
	return nil
}

func runSearch(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.positional) != 1 {
		return fmt.Errorf("usage: nhac search <keyword>")
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.SearchEvents(context.Background(), opts.positional[0])
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Printf("No events matching %q\n", opts.positional[0])
		return nil
	}
	for _, e := range events {
		printEvent(e)
	}
	return nil
}

func runUpcoming(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	checker := remind.NewChecker(s, func(e *store.Event) {
		fmt.Printf("⏰ %s lúc %s", e.Title, e.StartTime.Format("15:04 02/01/2006"))
		if e.Location != "" {
			fmt.Printf(" tại %s", e.Location)
		}
		fmt.Println()
	})

	delivered, err := checker.Check(context.Background(), time.Now())
	if err != nil {
		return err
	}
	if delivered == 0 {
		fmt.Println("No reminders due")
	}
	return nil
}

func runStats(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	s, cfg, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Database:   %s\n", cfg.DBPath.Value)
	fmt.Printf("Events:     %d\n", stats.EventCount)
	fmt.Printf("Pending:    %d\n", stats.UnnotifiedCount)
	if stats.DBSizeBytes > 0 {
		fmt.Printf("Size:       %.1f KB\n", float64(stats.DBSizeBytes)/1024)
	}
	return nil
}

// printEvent renders one event as a single scannable line plus details.
func printEvent(e *store.Event) {
	fmt.Printf("  [%d] %s · %s", e.ID, e.StartTime.Format(nlp.TimeLayout), e.Title)
	if e.Location != "" {
		fmt.Printf(" · %s", e.Location)
	}
	fmt.Printf(" · nhắc trước %d phút", e.ReminderMinutes)
	if e.Notified {
		fmt.Print(" · đã nhắc")
	}
	fmt.Println()
}
