package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grouprecall_messages_ingested_total",
			Help: "Total messages appended to history",
		},
	)

	MentionsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grouprecall_mentions_total",
			Help: "Bot mentions processed",
		},
		[]string{"outcome"}, // "replied", "summarize_error", "send_error"
	)

	InterpretFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grouprecall_interpret_fallbacks_total",
			Help: "Interpretation failures routed to the default selection",
		},
	)

	RetrievedMessages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grouprecall_retrieved_messages",
			Help:    "Messages selected as context per mention",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	RelayErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grouprecall_relay_errors_total",
			Help: "Relay failures",
		},
		[]string{"op"}, // "fetch" or "send"
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grouprecall_persist_failures_total",
			Help: "History writes that failed to reach durable storage",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
