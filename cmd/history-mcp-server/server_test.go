package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"group-recall/internal/config"
	"group-recall/internal/history"
	"group-recall/internal/storage"
)

func seedLog(t *testing.T, at time.Time, msgs ...storage.Message) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "message_log.json")
	rec, err := storage.NewFileRecorder(p)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	store, err := history.NewStore(rec, history.WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	for _, m := range msgs {
		if _, err := store.Append(m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return p
}

func resultText(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("unexpected content: %+v", res.Content)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestRetrieveMessages(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)
	p := seedLog(t, now.Add(-time.Hour),
		storage.Message{Sender: "alice", Group: "G", Text: "hello"},
		storage.Message{Sender: "bob", Group: "G", Text: "@Tao_bot recap"},
		storage.Message{Sender: "carol", Group: "H", Text: "elsewhere"},
	)
	s := NewHistoryServer(config.BackendFile, p, "@Tao_bot")
	s.now = func() time.Time { return now }

	res, err := s.RetrieveMessages(context.Background(), nil, &mcp.CallToolParamsFor[RetrieveParams]{
		Arguments: RetrieveParams{Group: "G", Range: "today"},
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	text := resultText(t, res)
	if res.IsError || !strings.Contains(text, "alice: hello") || strings.Contains(text, "recap") {
		t.Fatalf("unexpected result: %q", text)
	}

	res, _ = s.RetrieveMessages(context.Background(), nil, &mcp.CallToolParamsFor[RetrieveParams]{})
	if !res.IsError {
		t.Fatalf("missing group must be an error")
	}
}

func TestListGroups(t *testing.T) {
	p := seedLog(t, time.Now(),
		storage.Message{Sender: "a", Group: "G", Text: "1"},
		storage.Message{Sender: "b", Group: "H", Text: "2"},
		storage.Message{Sender: "c", Group: "G", Text: "3"},
	)
	s := NewHistoryServer(config.BackendFile, p, "@Tao_bot")
	res, err := s.ListGroups(context.Background(), nil, &mcp.CallToolParamsFor[ListGroupsParams]{})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "- G (2 messages)") || !strings.Contains(text, "- H (1 messages)") {
		t.Fatalf("unexpected result: %q", text)
	}
}

func TestDailyStats(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)
	p := seedLog(t, now.Add(-time.Hour),
		storage.Message{Sender: "alice", Group: "G", Text: "hello"},
		storage.Message{Sender: "bob", Group: "G", Text: "@Tao_bot recap"},
	)
	s := NewHistoryServer(config.BackendFile, p, "@Tao_bot")
	s.now = func() time.Time { return now }

	res, err := s.DailyStats(context.Background(), nil, &mcp.CallToolParamsFor[DailyStatsParams]{})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	text := resultText(t, res)
	for _, want := range []string{`"date": "2024-05-15"`, `"total_messages": 2`, `"unique_senders": 2`, `"mentions": 1`} {
		if res.IsError || !strings.Contains(text, want) {
			t.Fatalf("missing %s in %q", want, text)
		}
	}

	res, _ = s.DailyStats(context.Background(), nil, &mcp.CallToolParamsFor[DailyStatsParams]{
		Arguments: DailyStatsParams{Date: "2024-05-14"},
	})
	if text := resultText(t, res); !strings.Contains(text, `"total_messages": 0`) {
		t.Fatalf("other day should be empty: %q", text)
	}

	res, _ = s.DailyStats(context.Background(), nil, &mcp.CallToolParamsFor[DailyStatsParams]{
		Arguments: DailyStatsParams{Date: "15/05/2024"},
	})
	if !res.IsError {
		t.Fatalf("bad date must be an error")
	}
}
