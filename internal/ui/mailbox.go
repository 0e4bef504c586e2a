package ui

import (
	"context"
	"sync"

	"github.com/desertthunder/floody/internal/store"
)

// mailbox queues store events for the tea program. put never blocks the goroutine that mutated the store.
// A change notification is dropped when the previous queued event is also a change notification; other events are always kept.
type mailbox struct {
	mu     sync.Mutex
	queue  []store.Event
	ready  chan struct{}
	done   chan struct{}
	closer sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1), done: make(chan struct{})}
}

func (b *mailbox) put(ev store.Event) {
	b.mu.Lock()
	n := len(b.queue)
	if ev.Kind != store.EventChanged || n == 0 || b.queue[n-1].Kind != store.EventChanged {
		b.queue = append(b.queue, ev)
	}
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// next blocks until an event is queued. It returns false once ctx is done or the mailbox is closed.
func (b *mailbox) next(ctx context.Context) (store.Event, bool) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			ev := b.queue[0]
			b.queue = b.queue[1:]
			if len(b.queue) == 0 {
				b.queue = nil
			}
			b.mu.Unlock()
			return ev, true
		}
		b.mu.Unlock()

		select {
		case <-b.ready:
		case <-b.done:
			return store.Event{}, false
		case <-ctx.Done():
			return store.Event{}, false
		}
	}
}

func (b *mailbox) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *mailbox) close() { b.closer.Do(func() { close(b.done) }) }
