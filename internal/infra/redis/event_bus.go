package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"contractor-card-service/internal/domain"
	"contractor-card-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
)

// EventBus fans submission events out across instances through Redis pub/sub.
// Notes:
//   - Publish goes to Redis only; every instance (this one included) receives
//     it back through its single subscription and relays it to local
//     subscribers via an in-memory hub.
//   - Delivery is at-most-once: events published while an instance is not
//     subscribed are lost, so admin clients should reload on reconnect.
type EventBus struct {
	client  *redis.Client
	channel string
	hub     *memory.EventHub

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewEventBus(client *redis.Client, channel string) *EventBus {
	if channel == "" {
		channel = "submissions:events"
	}
	return &EventBus{
		client:  client,
		channel: channel,
		hub:     memory.NewEventHub(),
	}
}

// Start subscribes to the Redis channel and relays messages until Close.
func (b *EventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return nil
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription to be confirmed so no publish is missed after Start returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	b.pubsub = pubsub
	b.done = make(chan struct{})

	go b.relay(pubsub.Channel(), b.done)
	return nil
}

func (b *EventBus) relay(messages <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for msg := range messages {
		var event domain.SubmissionEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("drop malformed submission event: %v", err)
			continue
		}
		_ = b.hub.Publish(context.Background(), event)
	}
}

// Close stops relaying. Subscribers keep their channels until they cancel.
func (b *EventBus) Close() error {
	b.mu.Lock()
	pubsub, done := b.pubsub, b.done
	b.pubsub, b.done = nil, nil
	b.mu.Unlock()
	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	<-done
	return err
}

func (b *EventBus) Publish(ctx context.Context, event domain.SubmissionEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

func (b *EventBus) Subscribe(ctx context.Context) (<-chan domain.SubmissionEvent, func(), error) {
	return b.hub.Subscribe(ctx)
}
