package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/trmanh/nhac/internal/export"
	"github.com/trmanh/nhac/internal/mcp"
	"github.com/trmanh/nhac/internal/nlp"
	"github.com/trmanh/nhac/internal/remind"
	"github.com/trmanh/nhac/internal/store"
)

func runUpdate(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.positional) != 1 {
		return fmt.Errorf("usage: nhac update <id> [--title ...] [--start ...] [--location ...] [--reminder ...]")
	}

	id, err := strconv.ParseInt(opts.positional[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event id %q", opts.positional[0])
	}

	var patch store.EventPatch
	if v, ok := opts.flags["--title"]; ok {
		patch.Title = &v
	}
	if v, ok := opts.flags["--location"]; ok {
		patch.Location = &v
	}
	if v, ok := opts.flags["--start"]; ok {
		t, err := time.ParseInLocation(nlp.TimeLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("--start must look like 2025-11-03T10:00:00: %w", err)
		}
		patch.StartTime = &t
	}
	if v, ok := opts.flags["--reminder"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("--reminder must be a non-negative integer")
		}
		patch.ReminderMinutes = &n
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.UpdateEvent(ctx, id, patch); err != nil {
		return err
	}

	updated, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Updated event %d\n", id)
	printEvent(updated)
	return nil
}

func runDelete(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.positional) != 1 {
		return fmt.Errorf("usage: nhac delete <id>")
	}

	id, err := strconv.ParseInt(opts.positional[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event id %q", opts.positional[0])
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteEvent(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted event %d\n", id)
	return nil
}

func runExport(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	format := opts.flags["--format"]
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "ics" {
		return fmt.Errorf("unknown export format %q (json or ics)", format)
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.AllEvents(context.Background())
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := opts.flags["--out"]; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		err = export.WriteJSON(out, events)
	case "ics":
		err = export.WriteICS(out, events)
	}
	if err != nil {
		return err
	}

	if path := opts.flags["--out"]; path != "" {
		fmt.Printf("Exported %d events to %s\n", len(events), path)
	}
	return nil
}

func runWatch(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	s, cfg, err := openStore(opts)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Watching for reminders (%s), Ctrl-C to stop\n", cfg.PollSpec.Value)
	return remind.NewWatcher(checker, cfg.PollSpec.Value).Run(ctx)
}

func runMCP(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	s, cfg, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcp.NewServer(mcp.ServerConfig{
		Store:           s,
		Version:         version,
		DefaultReminder: cfg.DefaultReminder(),
	})
	return server.ServeStdio(srv)
}
