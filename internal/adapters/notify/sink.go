// Package notify delivers rendered messages to a chat webhook.
//
// Delivery is best effort: failures are returned to the caller for logging
// and are never retried here.
package notify

import (
	"context"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/logger"
	"github.com/okian/pzwatch/pkg/metrics"
)

// Sink accepts one message per call.
type Sink interface {
	Notify(ctx context.Context, msg model.Message) error
}

// LogSink writes messages to the log instead of delivering them.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a LogSink. A nil logger uses the global one.
func NewLogSink(l logger.Logger) *LogSink {
	if l == nil {
		l = logger.Get().Named("notify")
	}
	return &LogSink{logger: l}
}

// Notify logs msg and always succeeds.
func (s *LogSink) Notify(ctx context.Context, msg model.Message) error {
	s.logger.Info(ctx, "notification",
		logger.String("title", msg.Title),
		logger.String("description", msg.Description),
		logger.String("footer", msg.Footer),
		logger.Int("color", msg.Color))
	metrics.RecordNotification(metrics.ResultSkipped)
	return nil
}
