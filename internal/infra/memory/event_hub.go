package memory

import (
	"context"
	"sync"

	"contractor-card-service/internal/domain"
)

// EventHub is an in-process implementation of app.EventBus.
type EventHub struct {
	mu          sync.Mutex
	subscribers map[chan domain.SubmissionEvent]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		subscribers: make(map[chan domain.SubmissionEvent]struct{}),
	}
}

// Publish delivers event to every subscriber without blocking on slow readers.
func (h *EventHub) Publish(_ context.Context, event domain.SubmissionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		deliver(ch, event)
	}
	return nil
}

// Subscribe registers a new listener.
func (h *EventHub) Subscribe(_ context.Context) (<-chan domain.SubmissionEvent, func(), error) {
	ch := make(chan domain.SubmissionEvent, 32)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// Subscribers reports how many listeners are registered.
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// deliver drops the oldest queued event when ch is full so a slow reader
// never blocks the publisher.
func deliver(ch chan domain.SubmissionEvent, event domain.SubmissionEvent) {
	select {
	case ch <- event:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

