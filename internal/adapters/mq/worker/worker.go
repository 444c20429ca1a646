package worker

import (
	"context"
	"fmt"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/logger"
	"github.com/okian/pzwatch/pkg/metrics"
)

// Queue defines how the worker receives messages.
type Queue interface {
	Dequeue() <-chan model.Message
	Len() int
	Close() error
}

// Sink delivers one message.
type Sink interface {
	Notify(ctx context.Context, msg model.Message) error
}

// Worker delivers queued messages one at a time, so their order is kept.
// Failed deliveries are logged and dropped.
type Worker struct {
	queue Queue
	sink  Sink
	name  string

	done   chan struct{}
	logger logger.Logger
}

// New creates a worker over queue and sink.
func New(queue Queue, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		queue: queue,
		sink:  sink,
		name:  "notifier",
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run delivers messages until the queue is closed and drained, or ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	messages := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			metrics.UpdateNotifyQueueDepth(w.queue.Len())
			if err := w.sink.Notify(ctx, msg); err != nil {
				w.logger.Warn(ctx, "notification dropped",
					logger.String("title", msg.Title),
					logger.Error(err))
			}
		}
	}
}

// Shutdown closes the queue and waits for the backlog to be delivered or
// ctx to expire. Run must have been started with a context that outlives
// this call.
func (w *Worker) Shutdown(ctx context.Context) error {
	if err := w.queue.Close(); err != nil {
		w.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.Int("pending", w.queue.Len()))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
