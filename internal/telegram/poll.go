package telegram

import (
	"context"
	"log"
	"time"
)

// pollRetryDelay is the pause before retrying after a failed getUpdates call.
const pollRetryDelay = 3 * time.Second

// Poller turns getUpdates long polling into a channel of inbound messages.
type Poller struct {
	client  *Client
	timeout time.Duration
}

// NewPoller creates a poller using the given long-poll timeout.
func NewPoller(client *Client, timeout time.Duration) *Poller {
	return &Poller{
		client:  client,
		timeout: timeout,
	}
}

// Poll starts polling asynchronously and returns the message channel. The
// channel is closed when the context is cancelled. Transient API errors are
// logged and polling resumes after a short pause.
func (p *Poller) Poll(ctx context.Context) <-chan Message {
	messages := make(chan Message)
	go p.run(ctx, messages)
	return messages
}

func (p *Poller) run(ctx context.Context, messages chan<- Message) {
	defer close(messages)

	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Failed to get updates: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}

			msg, ok := FromUpdate(update)
			if !ok {
				continue
			}

			select {
			case messages <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}
