package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trmanh/nhac/internal/config"
	"github.com/trmanh/nhac/internal/nlp"
	"github.com/trmanh/nhac/internal/store"
)

func runAdd(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.positional) != 1 {
		return fmt.Errorf("usage: nhac add \"<sentence>\" [--at <timestamp>]")
	}

	ref, err := referenceInstant(opts)
	if err != nil {
		return err
	}

	s, cfg, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	event := store.FromExtracted(extractorFor(cfg).TextToEvent(opts.positional[0], ref))

	id, err := s.AddEvent(context.Background(), event)
	if err != nil {
		return fmt.Errorf("storing event: %w", err)
	}

	fmt.Printf("Added event %d\n", id)
	printEvent(event)
	return nil
}

func runParse(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.positional) != 1 {
		return fmt.Errorf("usage: nhac parse \"<sentence>\" [--at <timestamp>]")
	}

	ref, err := referenceInstant(opts)
	if err != nil {
		return err
	}

	// parse never touches the store; resolve config only for the default
	// reminder lead-time.
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: opts.configPath,
	})
	if err != nil {
		return err
	}

	event := extractorFor(cfg).TextToEvent(opts.positional[0], ref)

	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// extractorFor builds the extractor honoring the configured default
// reminder lead-time.
func extractorFor(cfg config.ResolvedConfig) *nlp.Extractor {
	return nlp.New(nlp.WithDefaultReminder(cfg.DefaultReminder()))
}
