package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/logger"
	"github.com/okian/pzwatch/pkg/metrics"
)

const (
	defaultUsername     = "Zomboid Stats Tracker"
	defaultTimeout      = 30 * time.Second
	defaultInterval     = 2 * time.Second
	defaultBurst        = 5
	defaultTripFailures = 5
	defaultOpenFor      = time.Minute
	maxErrorBody        = 512
	breakerName         = "discord-webhook"
)

// WebhookPayload is the JSON body posted to the webhook.
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// Embed is one rich message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedFooter is the small text under an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// DiscordSink posts messages to a Discord-compatible webhook.
// Posts are spaced by a token bucket, and a circuit breaker stops calling a
// webhook that keeps failing.
type DiscordSink struct {
	url      string
	username string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[struct{}]
	logger   logger.Logger

	tripAfter uint32
	openFor   time.Duration
}

// DiscordOption applies a configuration option to the DiscordSink.
type DiscordOption func(*DiscordSink)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(s *DiscordSink) {
		if c != nil {
			s.client = c
		}
	}
}

// WithUsername sets the display name used for posts.
func WithUsername(name string) DiscordOption {
	return func(s *DiscordSink) {
		if name != "" {
			s.username = name
		}
	}
}

// WithRateLimit allows one post per interval with the given burst.
// A non-positive interval disables spacing.
func WithRateLimit(interval time.Duration, burst int) DiscordOption {
	return func(s *DiscordSink) {
		if burst < 1 {
			burst = 1
		}
		limit := rate.Inf
		if interval > 0 {
			limit = rate.Every(interval)
		}
		s.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithBreaker opens the breaker after failures consecutive failures and
// keeps it open for openFor before probing again.
func WithBreaker(failures uint32, openFor time.Duration) DiscordOption {
	return func(s *DiscordSink) {
		if failures > 0 {
			s.tripAfter = failures
		}
		if openFor > 0 {
			s.openFor = openFor
		}
	}
}

// WithDiscordLogger sets the logger instance.
func WithDiscordLogger(l logger.Logger) DiscordOption {
	return func(s *DiscordSink) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewDiscordSink creates a sink posting to url.
func NewDiscordSink(url string, opts ...DiscordOption) *DiscordSink {
	s := &DiscordSink{
		url:       url,
		username:  defaultUsername,
		client:    &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Every(defaultInterval), defaultBurst),
		tripAfter: defaultTripFailures,
		openFor:   defaultOpenFor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("discord")
	}

	metrics.UpdateNotifierBreakerState(0)
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     s.openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn(context.Background(), "webhook breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.UpdateNotifierBreakerState(stateToFloat(to))
		},
	})
	return s
}

// Notify posts msg. Any failure is returned wrapped in ErrDelivery.
func (s *DiscordSink) Notify(ctx context.Context, msg model.Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.RecordNotification(metrics.ResultSkipped)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.post(ctx, msg)
	})
	switch {
	case err == nil:
		metrics.RecordNotification(metrics.ResultSuccess)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordNotification(metrics.ResultRejected)
	default:
		metrics.RecordNotification(metrics.ResultFailure)
	}
	return fmt.Errorf("%w: %w", ErrDelivery, err)
}

func (s *DiscordSink) post(ctx context.Context, msg model.Message) error {
	body, err := json.Marshal(s.payload(msg))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
}

func (s *DiscordSink) payload(msg model.Message) WebhookPayload {
	embed := Embed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}
	if msg.Footer != "" {
		embed.Footer = &EmbedFooter{Text: msg.Footer}
	}
	return WebhookPayload{Username: s.username, Embeds: []Embed{embed}}
}

func stateToFloat(st gobreaker.State) float64 {
	switch st {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
