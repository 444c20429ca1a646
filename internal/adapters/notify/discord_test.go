package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/pzwatch/internal/adapters/notify"
	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func testMessage() model.Message {
	return model.Message{
		Title:       "💀 Rick has died for the 1st time!",
		Description: "⏱️ **Survived:** 5 hours",
		Color:       0xFF0000,
		Timestamp:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Footer:      "Rest in pieces 💀",
	}
}

func TestDiscordSink(t *testing.T) {
	Convey("Given a Discord sink pointed at a test webhook", t, func() {
		_ = logger.Init()
		ctx := context.Background()

		var hits atomic.Int32
		var status atomic.Int32
		status.Store(http.StatusNoContent)
		var mu sync.Mutex
		var lastBody []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			lastBody = body
			mu.Unlock()
			w.WriteHeader(int(status.Load()))
		}))
		defer srv.Close()

		sink := notify.NewDiscordSink(srv.URL,
			notify.WithRateLimit(0, 1),
			notify.WithBreaker(5, time.Hour),
		)

		Convey("When the webhook answers 204", func() {
			err := sink.Notify(ctx, testMessage())

			Convey("Then delivery should succeed with an embed payload", func() {
				So(err, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 1)

				mu.Lock()
				body := lastBody
				mu.Unlock()

				var p notify.WebhookPayload
				So(json.Unmarshal(body, &p), ShouldBeNil)
				So(p.Username, ShouldEqual, "Zomboid Stats Tracker")
				So(p.Embeds, ShouldHaveLength, 1)
				So(p.Embeds[0].Title, ShouldEqual, "💀 Rick has died for the 1st time!")
				So(p.Embeds[0].Color, ShouldEqual, 0xFF0000)
				So(p.Embeds[0].Timestamp, ShouldEqual, "2024-05-01T10:00:00Z")
				So(p.Embeds[0].Footer.Text, ShouldEqual, "Rest in pieces 💀")
			})
		})

		Convey("When the webhook answers 200", func() {
			status.Store(http.StatusOK)
			So(sink.Notify(ctx, testMessage()), ShouldBeNil)
		})

		Convey("When the webhook answers 500", func() {
			status.Store(http.StatusInternalServerError)
			err := sink.Notify(ctx, testMessage())

			Convey("Then a delivery error should be returned", func() {
				So(errors.Is(err, notify.ErrDelivery), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "500")
			})
		})

		Convey("When the webhook answers another 2xx code", func() {
			status.Store(http.StatusAccepted)
			err := sink.Notify(ctx, testMessage())

			Convey("Then it should not count as accepted", func() {
				So(errors.Is(err, notify.ErrDelivery), ShouldBeTrue)
			})
		})

		Convey("When the webhook keeps failing", func() {
			status.Store(http.StatusBadGateway)
			for i := 0; i < 5; i++ {
				_ = sink.Notify(ctx, testMessage())
			}
			err := sink.Notify(ctx, testMessage())

			Convey("Then the breaker should stop calling the webhook", func() {
				So(errors.Is(err, notify.ErrDelivery), ShouldBeTrue)
				So(hits.Load(), ShouldEqual, 5)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			limited := notify.NewDiscordSink(srv.URL, notify.WithRateLimit(time.Hour, 1))
			_ = limited.Notify(ctx, testMessage())

			err := limited.Notify(cctx, testMessage())

			Convey("Then waiting for the rate limiter should fail fast", func() {
				So(errors.Is(err, notify.ErrDelivery), ShouldBeTrue)
				So(hits.Load(), ShouldEqual, 1)
			})
		})
	})
}

func TestLogSink(t *testing.T) {
	Convey("Given a log sink", t, func() {
		_ = logger.Init()
		sink := notify.NewLogSink(nil)

		Convey("Then notifying should always succeed", func() {
			So(sink.Notify(context.Background(), testMessage()), ShouldBeNil)
		})
	})
}
