package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"group-recall/internal/analytics"
	"group-recall/internal/assistant"
	"group-recall/internal/bot"
	"group-recall/internal/config"
	"group-recall/internal/history"
	"group-recall/internal/llm"
	"group-recall/internal/metrics"
	"group-recall/internal/relay"
	"group-recall/internal/scheduler"
	"group-recall/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	rec, err := newRecorder(cfg)
	if err != nil {
		log.Fatalf("failed to init history backend: %v", err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			log.Printf("failed to close history backend: %v", err)
		}
	}()

	store, err := history.NewStore(rec)
	if err != nil {
		log.Fatalf("failed to load history: %v", err)
	}
	log.Printf("📚 Loaded %d messages across %d groups", store.Len(), len(store.Groups()))

	factory := llm.NewFactory(cfg)
	interpreter, err := factory.CreateClient(cfg.LLMProvider, cfg.InterpretModel)
	if err != nil {
		log.Fatalf("failed to create interpretation client: %v", err)
	}
	summarizer, err := factory.CreateClient(cfg.LLMProvider, cfg.SummarizeModel)
	if err != nil {
		log.Fatalf("failed to create summarization client: %v", err)
	}

	rl, err := newRelay(cfg)
	if err != nil {
		log.Fatalf("failed to create relay: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if cfg.ReportSchedule != "" {
		sched := scheduler.New(cfg.ReportSchedule, time.Local)
		sched.SetReportFunction(func(ctx context.Context) error {
			stats := analytics.AnalyzeDay(store.All(), time.Now(), cfg.Mention)
			log.Printf("📊 %s", stats.Summary())
			return nil
		})
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := bot.New(rl, store, assistant.New(interpreter, summarizer, cfg.LLMTimeout), bot.Options{
		Mention:      cfg.Mention,
		ReplyPrefix:  cfg.ReplyPrefix,
		PollInterval: cfg.PollInterval,
	})
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("bot stopped with error: %v", err)
	}
}

func newRecorder(cfg *config.Config) (storage.Recorder, error) {
	switch cfg.HistoryBackend {
	case config.BackendSQLite:
		return storage.NewSQLiteRecorder(cfg.SQLitePath)
	default:
		return storage.NewFileRecorder(cfg.LogFilePath)
	}
}

func newRelay(cfg *config.Config) (relay.Relay, error) {
	switch cfg.RelayKind {
	case config.RelayTelegram:
		return relay.NewTelegram(cfg.TelegramToken)
	default:
		return relay.NewLuffa(cfg.LuffaSecret, cfg.LuffaReceiveURL, cfg.LuffaSendURL, cfg.HTTPTimeout), nil
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Printf("📈 Metrics listening on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("❌ metrics server failed: %v", err)
	}
}
