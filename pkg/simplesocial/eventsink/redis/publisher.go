// Package redis publishes store events to a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// DefaultPrefix is prepended to the events channel name.
const DefaultPrefix = "simplesocial:"

// Channel returns the pub/sub channel name for prefix.
func Channel(prefix string) string {
	return prefix + "events"
}

// Publisher sends JSON-encoded events to Redis.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// NewPublisher creates a Publisher. A nil client turns every publish into a no-op.
func NewPublisher(rdb *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{rdb: rdb, channel: Channel(prefix)}
}

// Channel returns the channel events are published to.
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish encodes e and publishes it.
func (p *Publisher) Publish(ctx context.Context, e simplesocial.Event) error {
	if p.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}
	return nil
}

// Sink adapts the publisher to simplesocial.EventSink.
func (p *Publisher) Sink() simplesocial.EventSink {
	return simplesocial.NewFuncEventSink(p.Publish)
}

// Subscribe decodes events from the channel and calls onEvent for each one until
// ctx is cancelled. Undecodable payloads are logged and skipped.
func (p *Publisher) Subscribe(ctx context.Context, onEvent func(simplesocial.Event)) error {
	if p.rdb == nil {
		return nil
	}
	sub := p.rdb.Subscribe(ctx, p.channel)
	// Wait for the subscription to be confirmed so no published event is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", p.channel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e simplesocial.Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					slog.Warn("Dropping undecodable event", "channel", msg.Channel, "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("Panic in event subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onEvent(e)
				}()
			}
		}
	}()

	return nil
}
