package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/pzwatch/internal/adapters/mq/queue"
	"github.com/okian/pzwatch/internal/adapters/mq/worker"
	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type slowSink struct {
	mu     sync.Mutex
	titles []string
	delay  time.Duration
	failOn string
}

func (s *slowSink) Notify(_ context.Context, msg model.Message) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Title == s.failOn {
		return errors.New("webhook returned 500")
	}
	s.titles = append(s.titles, msg.Title)
	return nil
}

func (s *slowSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.titles...)
}

func TestWorker(t *testing.T) {
	Convey("Given a worker draining a queue into a slow sink", t, func() {
		_ = logger.Init()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		sink := &slowSink{delay: 5 * time.Millisecond}
		w := worker.New(q, sink, worker.WithName("test-notifier"))
		go w.Run(ctx)

		Convey("When messages are queued and the worker shuts down", func() {
			for _, title := range []string{"a", "b", "c", "d"} {
				So(q.Enqueue(ctx, model.Message{Title: title}), ShouldBeNil)
			}
			shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			err := w.Shutdown(shutdownCtx)

			Convey("Then the backlog should be delivered in order", func() {
				So(err, ShouldBeNil)
				So(sink.delivered(), ShouldResemble, []string{"a", "b", "c", "d"})
			})
		})

		Convey("When a delivery fails", func() {
			sink.failOn = "b"
			for _, title := range []string{"a", "b", "c"} {
				So(q.Enqueue(ctx, model.Message{Title: title}), ShouldBeNil)
			}
			So(w.Shutdown(context.Background()), ShouldBeNil)

			Convey("Then the failed message should be dropped and the rest delivered", func() {
				So(sink.delivered(), ShouldResemble, []string{"a", "c"})
			})
		})

		Convey("When shutdown times out", func() {
			sink.delay = 200 * time.Millisecond
			for _, title := range []string{"a", "b", "c"} {
				So(q.Enqueue(ctx, model.Message{Title: title}), ShouldBeNil)
			}
			shutdownCtx, stop := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer stop()

			Convey("Then an error should be returned", func() {
				So(w.Shutdown(shutdownCtx), ShouldNotBeNil)
			})
		})
	})
}
