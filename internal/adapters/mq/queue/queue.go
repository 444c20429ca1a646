// Package queue buffers outgoing notifications between the poll loop and
// the delivery worker.
//
// Enqueue never blocks: a slow webhook must not stall tailing. Messages are
// delivered in the order they were accepted.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 256
)

// Message is the payload type flowing through the queue.
type Message = model.Message

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a message. Returns ErrFull or ErrClosed when it was not accepted.
	Enqueue(ctx context.Context, m Message) error
	// Dequeue returns the channel of pending messages. It is closed after
	// Close once the backlog has been read.
	Dequeue() <-chan Message
	// Len returns the current number of queued messages.
	Len() int
	// Close stops accepting messages.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	messages chan Message
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)
	metrics.UpdateNotifyQueueDepth(0)
	return q
}

// Enqueue adds m to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordNotifyQueueDropped("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordNotifyQueueDropped("cancelled")
		return fmt.Errorf("enqueue: %w", err)
	}

	select {
	case q.messages <- m:
		metrics.UpdateNotifyQueueDepth(len(q.messages))
		return nil
	default:
		metrics.RecordNotifyQueueDropped("full")
		return fmt.Errorf("%w: %d pending", ErrFull, q.capacity)
	}
}

// Notify makes the queue usable wherever a notification sink is expected.
func (q *InMemoryQueue) Notify(ctx context.Context, m Message) error {
	return q.Enqueue(ctx, m)
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Message {
	return q.messages
}

// Len returns the current number of queued messages.
func (q *InMemoryQueue) Len() int {
	return len(q.messages)
}

// Close stops accepting messages. Pending messages stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
