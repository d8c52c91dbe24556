package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/trmanh/nhac/internal/store"
)

// helper: create a test store with some data
func setupTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	events := []*store.Event{
		{Title: "họp nhóm", StartTime: time.Date(2025, 11, 4, 10, 0, 0, 0, time.Local), Location: "phòng 302", ReminderMinutes: 15},
		{Title: "đi khám răng", StartTime: time.Date(2025, 11, 6, 8, 0, 0, 0, time.Local), ReminderMinutes: 60},
		{Title: "nộp báo cáo", StartTime: time.Date(2025, 12, 1, 9, 0, 0, 0, time.Local), ReminderMinutes: 10},
	}
	for _, e := range events {
		if _, err := s.AddEvent(ctx, e); err != nil {
			t.Fatalf("adding test event: %v", err)
		}
	}
	return s
}

func TestNewServer(t *testing.T) {
	s := setupTestStore(t)

	srv := NewServer(ServerConfig{Store: s, Version: "test"})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

// callTool invokes an MCP tool through the JSON-RPC message path.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestParseTool(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_parse", map[string]interface{}{
		"sentence":  "nhắc tôi họp nhóm lúc 10h sáng mai ở phòng 302, nhắc trước 15 phút",
		"reference": "2025-11-03T08:00:00",
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}

	var parsed struct {
		Event           string `json:"event"`
		StartTime       string `json:"start_time"`
		Location        string `json:"location"`
		ReminderMinutes int    `json:"reminder_minutes"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &parsed); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if parsed.Event != "họp nhóm" {
		t.Errorf("event = %q", parsed.Event)
	}
	if parsed.StartTime != "2025-11-04T10:00:00" {
		t.Errorf("start_time = %q", parsed.StartTime)
	}
	if parsed.Location != "phòng 302" {
		t.Errorf("location = %q", parsed.Location)
	}
	if parsed.ReminderMinutes != 15 {
		t.Errorf("reminder_minutes = %d", parsed.ReminderMinutes)
	}
}

func TestParseToolMissingSentence(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_parse", map[string]interface{}{})
	if !result.IsError {
		t.Error("expected error for missing sentence")
	}
}

func TestParseToolBadReference(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_parse", map[string]interface{}{
		"sentence":  "họp nhóm",
		"reference": "yesterday",
	})
	if !result.IsError {
		t.Error("expected error for malformed reference")
	}
}

func TestParseToolNonStringReference(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_parse", map[string]interface{}{
		"sentence":  "họp nhóm",
		"reference": float64(1762128000),
	})
	if !result.IsError {
		t.Error("expected error for non-string reference")
	}
}

// TestConfiguredDefaultReminder checks that the server-level reminder
// default reaches the extractor for sentences without a reminder phrase.
func TestConfiguredDefaultReminder(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s, DefaultReminder: 30})

	result := callTool(t, srv, "nhac_add", map[string]interface{}{
		"sentence":  "họp nhóm lúc 10h",
		"reference": "2025-11-03T08:00:00",
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}

	var added struct {
		ID              int64 `json:"id"`
		ReminderMinutes int   `json:"reminder_minutes"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &added); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if added.ReminderMinutes != 30 {
		t.Errorf("reminder_minutes = %d, want the configured 30", added.ReminderMinutes)
	}

	stored, err := s.GetEvent(context.Background(), added.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ReminderMinutes != 30 {
		t.Errorf("stored reminder = %d, want 30", stored.ReminderMinutes)
	}

	// An explicit reminder phrase still wins over the configured default.
	result = callTool(t, srv, "nhac_parse", map[string]interface{}{
		"sentence":  "họp nhóm lúc 10h, nhắc trước 5 phút",
		"reference": "2025-11-03T08:00:00",
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}
	var parsed struct {
		ReminderMinutes int `json:"reminder_minutes"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &parsed); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if parsed.ReminderMinutes != 5 {
		t.Errorf("reminder_minutes = %d, want the explicit 5", parsed.ReminderMinutes)
	}
}

func TestAddTool(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_add", map[string]interface{}{
		"sentence":  "đi bơi lúc 6h sáng mai",
		"reference": "2025-11-03T08:00:00",
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}

	var added struct {
		ID    int64  `json:"id"`
		Event string `json:"event"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &added); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if added.ID == 0 {
		t.Error("stored event has no id")
	}
	if added.Event != "đi bơi" {
		t.Errorf("event = %q", added.Event)
	}

	stored, err := s.GetEvent(context.Background(), added.ID)
	if err != nil {
		t.Fatalf("added event not in store: %v", err)
	}
	if stored.RawText != "đi bơi lúc 6h sáng mai" {
		t.Errorf("raw_text = %q", stored.RawText)
	}
}

func TestSearchTool(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_search", map[string]interface{}{
		"keyword": "họp",
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}

	var events []toolEvent
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &events); err != nil {
		t.Fatalf("parsing results: %v", err)
	}
	if len(events) != 1 || events[0].Event != "họp nhóm" {
		t.Errorf("got %d results, want the one matching event", len(events))
	}
}

func TestSearchToolLimit(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_search", map[string]interface{}{
		"keyword": "n",
		"limit":   float64(1),
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}

	var events []toolEvent
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &events); err != nil {
		t.Fatalf("parsing results: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("limit ignored: got %d results", len(events))
	}
}

func TestListTool(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	tests := []struct {
		name  string
		args  map[string]interface{}
		count int
	}{
		{"day", map[string]interface{}{"range": "day", "date": "2025-11-04"}, 1},
		{"week from mid-week anchor", map[string]interface{}{"range": "week", "date": "2025-11-05"}, 2},
		{"month", map[string]interface{}{"range": "month", "date": "2025-11-15"}, 2},
		{"other month", map[string]interface{}{"range": "month", "date": "2025-12-15"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, srv, "nhac_list", tt.args)
			if result.IsError {
				t.Fatalf("tool returned error: %s", getTextContent(t, result))
			}
			var events []toolEvent
			if err := json.Unmarshal([]byte(getTextContent(t, result)), &events); err != nil {
				t.Fatalf("parsing results: %v", err)
			}
			if len(events) != tt.count {
				t.Errorf("got %d events, want %d", len(events), tt.count)
			}
		})
	}
}

func TestListToolBadDate(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := callTool(t, srv, "nhac_list", map[string]interface{}{"date": "04/11/2025"})
	if !result.IsError {
		t.Error("expected error for malformed date")
	}
}

func TestUpcomingTool(t *testing.T) {
	// Fresh store: the shared fixture's fixed dates are long past and would
	// all count as due.
	s, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	srv := NewServer(ServerConfig{Store: s})

	// One event whose reminder window is open, one comfortably in the future.
	id, err := s.AddEvent(context.Background(), &store.Event{
		Title:           "sắp diễn ra",
		StartTime:       time.Now().Add(5 * time.Minute),
		ReminderMinutes: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddEvent(context.Background(), &store.Event{
		Title:           "còn lâu",
		StartTime:       time.Now().Add(48 * time.Hour),
		ReminderMinutes: 10,
	}); err != nil {
		t.Fatal(err)
	}

	result := callTool(t, srv, "nhac_upcoming", map[string]interface{}{
		"mark_notified": true,
	})
	if result.IsError {
		t.Fatalf("tool returned error: %s", getTextContent(t, result))
	}

	var events []toolEvent
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &events); err != nil {
		t.Fatalf("parsing results: %v", err)
	}
	if len(events) != 1 || events[0].Event != "sắp diễn ra" {
		t.Fatalf("got %d due events, want 1", len(events))
	}

	ev, err := s.GetEvent(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Notified {
		t.Error("due event not marked notified")
	}
}

func TestStatsResource(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s})

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "resources/read",
		"params":  map[string]interface{}{"uri": "nhac://stats"},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Contents []struct {
				URI      string `json:"uri"`
				MIMEType string `json:"mimeType"`
				Text     string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("resource read failed: %s", resp.Error.Message)
	}
	if len(resp.Result.Contents) == 0 {
		t.Fatal("no resource contents")
	}

	var stats map[string]int64
	if err := json.Unmarshal([]byte(resp.Result.Contents[0].Text), &stats); err != nil {
		t.Fatalf("parsing stats: %v", err)
	}
	if stats["events"] != 3 {
		t.Errorf("events = %d, want 3", stats["events"])
	}
	if stats["unnotified"] != 3 {
		t.Errorf("unnotified = %d, want 3", stats["unnotified"])
	}
}
