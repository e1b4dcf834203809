// Package bot runs the ingestion loop and the mention command pipeline.
package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"group-recall/internal/assistant"
	"group-recall/internal/metrics"
	"group-recall/internal/relay"
	"group-recall/internal/storage"
)

const (
	UnknownUser  = "Unknown User"
	UnknownGroup = "Unknown Group"
)

// Store is the part of the history store the bot needs.
type Store interface {
	Append(msg storage.Message) (storage.Message, error)
	AllMessagesFor(group string) []storage.Message
}

type Options struct {
	Mention      string
	ReplyPrefix  string
	PollInterval time.Duration
}

type Bot struct {
	relay        relay.Relay
	store        Store
	assistant    assistant.Assistant
	mention      string
	replyPrefix  string
	pollInterval time.Duration
	now          func() time.Time
}

func New(r relay.Relay, store Store, a assistant.Assistant, opts Options) *Bot {
	return &Bot{
		relay:        r,
		store:        store,
		assistant:    a,
		mention:      opts.Mention,
		replyPrefix:  opts.ReplyPrefix,
		pollInterval: opts.PollInterval,
		now:          time.Now,
	}
}

// Run polls until ctx is cancelled. Each iteration, including every mention
// it triggers, completes before the next poll starts.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("🤖 Bot running, listening for %s every %s", b.mention, b.pollInterval)
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 Bot stopped: %v", ctx.Err())
			return ctx.Err()
		case <-t.C:
		}
		b.RunOnce(ctx)
		t.Reset(b.pollInterval)
	}
}

// RunOnce fetches one batch from the relay, records every message and handles
// mentions in arrival order.
func (b *Bot) RunOnce(ctx context.Context) {
	batch, err := b.relay.Fetch(ctx)
	if err != nil {
		metrics.RelayErrors.WithLabelValues("fetch").Inc()
		log.Printf("❌ Failed to fetch messages: %v", err)
		return
	}
	for _, in := range batch {
		msg := b.ingest(in)
		if strings.Contains(msg.Text, b.mention) {
			b.handleMention(ctx, msg)
		}
	}
}

func (b *Bot) ingest(in relay.Inbound) storage.Message {
	msg := normalize(in)
	stored, err := b.store.Append(msg)
	metrics.MessagesIngested.Inc()
	if err != nil {
		// the message is still in the in-memory history; only durability is lost
		metrics.PersistFailures.Inc()
		log.Printf("❌ PERSIST failed for [%s] %s: %v", msg.Group, msg.Sender, err)
	}
	log.Printf("📩 [%s] %s -> %s", stored.Group, stored.Sender, stored.Text)
	return stored
}

func normalize(in relay.Inbound) storage.Message {
	msg := storage.Message{Sender: in.Sender, Group: in.Group, Text: in.Text}
	if msg.Sender == "" {
		msg.Sender = UnknownUser
	}
	if msg.Group == "" {
		msg.Group = UnknownGroup
	}
	return msg
}
