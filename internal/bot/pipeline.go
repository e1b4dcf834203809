package bot

import (
	"context"
	"log"
	"strings"

	"group-recall/internal/metrics"
	"group-recall/internal/retrieval"
	"group-recall/internal/storage"
)

// handleMention answers one mention: interpret, select history, summarize,
// reply. Failures are logged; nothing is posted to the group on error.
func (b *Bot) handleMention(ctx context.Context, msg storage.Message) {
	log.Printf("🤖 Command detected in [%s]. Begin parsing...", msg.Group)
	now := b.now()

	req, err := b.assistant.Interpret(ctx, msg.Text, now)
	if err != nil {
		metrics.InterpretFallbacks.Inc()
		log.Printf("⚠️ Interpretation failed, using default selection: %v", err)
		req = retrieval.Request{}
	}

	if req.IsEmpty() {
		log.Printf("ℹ️ No time range or count in request, using default selection")
	}
	selected := retrieval.Resolve(b.history(msg.Group), req, now)
	metrics.RetrievedMessages.Observe(float64(len(selected)))
	log.Printf("🔍 %d history messages retrieved (%s)", len(selected), req)

	answer, err := b.assistant.Summarize(ctx, msg.Text, selected)
	if err != nil {
		metrics.MentionsHandled.WithLabelValues("summarize_error").Inc()
		log.Printf("❌ Failed to generate answer for [%s]: %v", msg.Group, err)
		return
	}

	if err := b.relay.Send(ctx, msg.Group, b.replyPrefix+answer); err != nil {
		metrics.RelayErrors.WithLabelValues("send").Inc()
		metrics.MentionsHandled.WithLabelValues("send_error").Inc()
		log.Printf("❌ Failed to send group message to [%s]: %v", msg.Group, err)
		return
	}
	metrics.MentionsHandled.WithLabelValues("replied").Inc()
	log.Printf("✅ Group message sent to [%s]", msg.Group)
}

// history returns the group's messages without the ones that addressed the bot.
func (b *Bot) history(group string) []storage.Message {
	all := b.store.AllMessagesFor(group)
	out := make([]storage.Message, 0, len(all))
	for _, m := range all {
		if !strings.Contains(m.Text, b.mention) {
			out = append(out, m)
		}
	}
	return out
}
