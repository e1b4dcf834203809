// Package relay connects the bot to the messaging relay that delivers group
// messages and accepts replies.
package relay

import "context"

// Inbound is one raw group message as delivered by a relay. Empty fields mean
// the relay did not provide them.
type Inbound struct {
	Group  string
	Sender string
	Text   string
}

type Relay interface {
	// Fetch returns messages that arrived since the previous call.
	Fetch(ctx context.Context) ([]Inbound, error)
	// Send publishes text to a group.
	Send(ctx context.Context, group, text string) error
}
