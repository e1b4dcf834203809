package storage

import "time"

// Message is a single observed group message.
// Seq is assigned by the history store at append time and is unique for the
// lifetime of the log; it is the identity used for deduplication.
type Message struct {
	Seq        int64     `json:"seq"`
	ReceivedAt time.Time `json:"time"`
	Sender     string    `json:"sender"`
	Group      string    `json:"group"`
	Text       string    `json:"text"`
}

// Recorder abstracts durable persistence of observed messages.
// LoadMessages returns messages in append order.
// AppendMessage must not return before the message is durable.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendMessage(msg Message) error
	LoadMessages() ([]Message, error)
	Close() error
}
