package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"group-recall/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	backend := envOr("HISTORY_BACKEND", config.BackendFile)
	path := envOr("LOG_FILE_PATH", "data/message_log.json")
	if backend == config.BackendSQLite {
		path = envOr("SQLITE_PATH", "data/messages.db")
	}
	mention := envOr("BOT_MENTION", "@Tao_bot")

	log.Printf("🚀 Starting history MCP server (%s backend at %s)", backend, path)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "group-recall-history-mcp",
		Version: "1.0.0",
	}, nil)

	hs := NewHistoryServer(backend, path, mention)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve_messages",
		Description: "Retrieves group chat messages by absolute time range, relative range (6h, 2d, today, yesterday, week) or most recent count",
	}, hs.RetrieveMessages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_groups",
		Description: "Lists known groups with their message counts",
	}, hs.ListGroups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "daily_stats",
		Description: "Returns per-group message, sender and bot mention counts for one day as JSON",
	}, hs.DailyStats)

	log.Printf("📋 Registered %d tools: retrieve_messages, list_groups, daily_stats", 3)
	log.Printf("🔗 Starting server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
