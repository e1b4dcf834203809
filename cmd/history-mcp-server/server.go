package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"group-recall/internal/analytics"
	"group-recall/internal/config"
	"group-recall/internal/history"
	"group-recall/internal/retrieval"
	"group-recall/internal/storage"
)

// RetrieveParams are the retrieve_messages tool arguments
type RetrieveParams struct {
	Group     string `json:"group" mcp:"group identifier"`
	StartTime string `json:"start_time,omitempty" mcp:"start time 'yyyy-mm-dd hh:mm' (needs end_time)"`
	EndTime   string `json:"end_time,omitempty" mcp:"end time 'yyyy-mm-dd hh:mm' (needs start_time)"`
	Range     string `json:"range,omitempty" mcp:"relative range: '<N>h', '<N>d', 'today', 'yesterday', 'week'"`
	Count     int    `json:"count,omitempty" mcp:"number of most recent messages"`
}

// ListGroupsParams has no arguments
type ListGroupsParams struct{}

// DailyStatsParams are the daily_stats tool arguments
type DailyStatsParams struct {
	Date string `json:"date,omitempty" mcp:"day 'yyyy-mm-dd', defaults to today"`
}

// HistoryServer answers MCP tool calls from the persisted message log. The log
// is re-read on every call so messages written by the running bot show up.
type HistoryServer struct {
	backend string
	path    string
	mention string
	now     func() time.Time
}

func NewHistoryServer(backend, path, mention string) *HistoryServer {
	return &HistoryServer{backend: backend, path: path, mention: mention, now: time.Now}
}

func (s *HistoryServer) load() (*history.Store, error) {
	var (
		rec storage.Recorder
		err error
	)
	if s.backend == config.BackendSQLite {
		rec, err = storage.NewSQLiteRecorder(s.path)
	} else {
		rec, err = storage.NewFileRecorder(s.path)
	}
	if err != nil {
		return nil, err
	}
	defer rec.Close()
	return history.NewStore(rec)
}

func (s *HistoryServer) RetrieveMessages(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[RetrieveParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	log.Printf("🔍 MCP Server: retrieving messages for group '%s'", args.Group)

	if args.Group == "" {
		return errorResult("❌ group is required"), nil
	}
	store, err := s.load()
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Failed to load history: %v", err)), nil
	}

	var msgs []storage.Message
	for _, m := range store.AllMessagesFor(args.Group) {
		if !strings.Contains(m.Text, s.mention) {
			msgs = append(msgs, m)
		}
	}
	req := retrieval.Request{Start: args.StartTime, End: args.EndTime, Range: args.Range, Count: args.Count}
	selected := retrieval.Resolve(msgs, req, s.now())

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: formatMessages(args.Group, selected)},
		},
		Meta: map[string]interface{}{
			"group": args.Group,
			"count": len(selected),
		},
	}, nil
}

func (s *HistoryServer) ListGroups(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListGroupsParams]) (*mcp.CallToolResultFor[any], error) {
	store, err := s.load()
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Failed to load history: %v", err)), nil
	}
	groups := store.Groups()
	var b strings.Builder
	fmt.Fprintf(&b, "%d groups:\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(&b, "- %s (%d messages)\n", g, len(store.AllMessagesFor(g)))
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
		Meta:    map[string]interface{}{"groups": groups},
	}, nil
}

func (s *HistoryServer) DailyStats(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[DailyStatsParams]) (*mcp.CallToolResultFor[any], error) {
	now := s.now()
	day := now
	if d := strings.TrimSpace(params.Arguments.Date); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, now.Location())
		if err != nil {
			return errorResult(fmt.Sprintf("❌ Invalid date %q: want yyyy-mm-dd", d)), nil
		}
		day = parsed
	}
	store, err := s.load()
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Failed to load history: %v", err)), nil
	}
	stats := analytics.AnalyzeDay(store.All(), day, s.mention)
	data, err := stats.ToJSON()
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Failed to encode stats: %v", err)), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: data}},
		Meta:    map[string]interface{}{"date": stats.Date},
	}, nil
}

func formatMessages(group string, msgs []storage.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d messages from %s:\n", len(msgs), group)
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.ReceivedAt.Format("2006-01-02 15:04:05"), m.Sender, m.Text)
	}
	return b.String()
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
