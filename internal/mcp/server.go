// Package mcp provides a Model Context Protocol server for nhac.
//
// It exposes the schedule assistant to agent clients as MCP tools: parsing
// a natural-language sentence into an event, storing it, querying ranges,
// keyword search, and due-reminder checks. Stats are published as an MCP
// resource. Supports stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/trmanh/nhac/internal/nlp"
	"github.com/trmanh/nhac/internal/remind"
	"github.com/trmanh/nhac/internal/store"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store           store.Store
	Version         string // version string for MCP server info
	DefaultReminder int    // reminder lead-time in minutes when a sentence has none; non-positive uses the built-in default
}

// dbMu serializes all MCP tool calls that touch the database.
// The mcp-go library dispatches handlers concurrently via goroutines;
// SQLite supports only one writer at a time, and a reminder check must not
// interleave with an add. A global mutex keeps tool calls ordered.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all nhac tools and
// resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"nhac",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	var nlpOpts []nlp.Option
	if cfg.DefaultReminder > 0 {
		nlpOpts = append(nlpOpts, nlp.WithDefaultReminder(cfg.DefaultReminder))
	}
	extractor := nlp.New(nlpOpts...)

	registerParseTool(s, extractor)
	registerAddTool(s, extractor, cfg.Store)
	registerSearchTool(s, cfg.Store)
	registerListTool(s, cfg.Store)
	registerUpcomingTool(s, cfg.Store)

	registerStatsResource(s, cfg.Store)

	return s
}

// parseReference interprets the optional reference argument. Absent or
// empty means "now"; a supplied value must be a string in the wire
// timestamp layout.
func parseReference(req mcp.CallToolRequest) (time.Time, error) {
	raw, ok := req.GetArguments()["reference"]
	if !ok || raw == nil {
		return time.Now(), nil
	}
	ref, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("reference must be a string timestamp (2006-01-02T15:04:05)")
	}
	if ref == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(nlp.TimeLayout, ref, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("reference must look like 2025-11-03T08:00:00: %w", err)
	}
	return t, nil
}

// --- Tools ---

func registerParseTool(s *server.MCPServer, extractor *nlp.Extractor) {
	tool := mcp.NewTool("nhac_parse",
		mcp.WithDescription("Parse a natural-language Vietnamese sentence into a structured schedule event without storing it. Returns title, absolute start time, location, and reminder lead-time."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("sentence",
			mcp.Required(),
			mcp.Description("The sentence to parse, e.g. 'nhắc tôi họp nhóm lúc 10h sáng mai ở phòng 302, nhắc trước 15 phút'"),
		),
		mcp.WithString("reference",
			mcp.Description("Reference instant relative dates resolve against (2006-01-02T15:04:05). Defaults to now."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sentence, err := req.RequireString("sentence")
		if err != nil {
			return mcp.NewToolResultError("sentence is required"), nil
		}
		ref, err := parseReference(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		event := extractor.TextToEvent(sentence, ref)
		data, _ := json.MarshalIndent(event, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerAddTool(s *server.MCPServer, extractor *nlp.Extractor, st store.Store) {
	tool := mcp.NewTool("nhac_add",
		mcp.WithDescription("Parse a natural-language sentence into a schedule event and store it. Returns the stored record including its id."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("sentence",
			mcp.Required(),
			mcp.Description("The sentence describing the event"),
		),
		mcp.WithString("reference",
			mcp.Description("Reference instant relative dates resolve against (2006-01-02T15:04:05). Defaults to now."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		sentence, err := req.RequireString("sentence")
		if err != nil {
			return mcp.NewToolResultError("sentence is required"), nil
		}
		ref, err := parseReference(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		event := store.FromExtracted(extractor.TextToEvent(sentence, ref))
		if _, err := st.AddEvent(ctx, event); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("storing event: %v", err)), nil
		}

		data, _ := json.MarshalIndent(eventJSON(event), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerSearchTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("nhac_search",
		mcp.WithDescription("Search stored events by keyword over title and location."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Keyword to match against event titles and locations"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 20, max: 100)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		keyword, err := req.RequireString("keyword")
		if err != nil {
			return mcp.NewToolResultError("keyword is required"), nil
		}

		limit := 20
		if limitVal, err := req.RequireFloat("limit"); err == nil && int(limitVal) > 0 {
			limit = int(limitVal)
			if limit > 100 {
				limit = 100
			}
		}

		events, err := st.SearchEvents(ctx, keyword)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}
		if len(events) > limit {
			events = events[:limit]
		}

		data, _ := json.MarshalIndent(eventsJSON(events), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerListTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("nhac_list",
		mcp.WithDescription("List stored events for a day, week, or month."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("range",
			mcp.Description("Range to list: day, week, or month (default: day)"),
			mcp.Enum("day", "week", "month"),
		),
		mcp.WithString("date",
			mcp.Description("Anchor date (2006-01-02). Defaults to today. Week ranges start on the Monday of that date's week."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		anchor := time.Now()
		if dateStr, err := req.RequireString("date"); err == nil && dateStr != "" {
			d, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				return mcp.NewToolResultError("date must look like 2025-11-03"), nil
			}
			anchor = d
		}

		rangeKind := "day"
		if r, err := req.RequireString("range"); err == nil && r != "" {
			rangeKind = r
		}

		var events []*store.Event
		var err error
		switch rangeKind {
		case "day":
			events, err = st.EventsOnDay(ctx, anchor)
		case "week":
			monday := anchor.AddDate(0, 0, -((int(anchor.Weekday()) + 6) % 7))
			events, err = st.EventsInWeek(ctx, monday)
		case "month":
			events, err = st.EventsInMonth(ctx, anchor.Year(), anchor.Month())
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid range: %s", rangeKind)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(eventsJSON(events), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerUpcomingTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("nhac_upcoming",
		mcp.WithDescription("Return events whose reminder window is open right now. Optionally marks them notified so they fire once."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithBoolean("mark_notified",
			mcp.Description("Mark returned events as notified (default: false)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		pending, err := st.UnnotifiedEvents(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading pending events: %v", err)), nil
		}

		due := remind.Due(pending, time.Now())

		if mark, err := req.RequireBool("mark_notified"); err == nil && mark {
			for _, e := range due {
				if err := st.MarkNotified(ctx, e.ID); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("marking event %d notified: %v", e.ID, err)), nil
				}
			}
		}

		data, _ := json.MarshalIndent(eventsJSON(due), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

// --- Resources ---

func registerStatsResource(s *server.MCPServer, st store.Store) {
	resource := mcp.NewResource(
		"nhac://stats",
		"Schedule statistics",
		mcp.WithResourceDescription("Event counts and database size"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := st.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading stats: %w", err)
		}

		data, _ := json.MarshalIndent(map[string]int64{
			"events":     stats.EventCount,
			"unnotified": stats.UnnotifiedCount,
			"db_bytes":   stats.DBSizeBytes,
		}, "", "  ")

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// --- JSON shapes ---

// toolEvent is the record shape tool results use; it mirrors the flat
// extractor mapping plus storage fields.
type toolEvent struct {
	ID              int64   `json:"id"`
	Event           string  `json:"event"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	Location        string  `json:"location"`
	ReminderMinutes int     `json:"reminder_minutes"`
	Notified        bool    `json:"notified"`
	RawText         string  `json:"raw_text,omitempty"`
}

func eventJSON(e *store.Event) toolEvent {
	var end *string
	if e.EndTime != nil {
		s := e.EndTime.Format(nlp.TimeLayout)
		end = &s
	}
	return toolEvent{
		ID:              e.ID,
		Event:           e.Title,
		StartTime:       e.StartTime.Format(nlp.TimeLayout),
		EndTime:         end,
		Location:        e.Location,
		ReminderMinutes: e.ReminderMinutes,
		Notified:        e.Notified,
		RawText:         e.RawText,
	}
}

func eventsJSON(events []*store.Event) []toolEvent {
	out := make([]toolEvent, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON(e))
	}
	return out
}
