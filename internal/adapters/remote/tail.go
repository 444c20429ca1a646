package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/okian/pzwatch/pkg/logger"
	"github.com/okian/pzwatch/pkg/metrics"
)

// Chunk is the result of one tail read.
type Chunk struct {
	Text    string // decoded text; invalid UTF-8 replaced with U+FFFD
	Offset  uint64 // cursor to store once Text has been processed
	Missing bool   // the remote file does not exist
	Rotated bool   // the file shrank below the stored cursor; reading restarted at 0
}

// TailReader fetches bytes appended to a remote log since a cursor.
type TailReader struct {
	dialer      Dialer
	timeout     time.Duration
	holdPartial bool
	logger      logger.Logger
}

// Option applies a configuration option to the TailReader.
type Option func(*TailReader)

// WithTimeout bounds each Tail call, dial included.
func WithTimeout(d time.Duration) Option {
	return func(t *TailReader) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithHoldPartial controls whether an unterminated last line is left for
// the next read. Enabled by default.
func WithHoldPartial(hold bool) Option {
	return func(t *TailReader) {
		t.holdPartial = hold
	}
}

// WithLogger sets the logger instance.
func WithLogger(l logger.Logger) Option {
	return func(t *TailReader) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTailReader creates a TailReader over dialer.
func NewTailReader(dialer Dialer, opts ...Option) *TailReader {
	t := &TailReader{
		dialer:      dialer,
		timeout:     30 * time.Second,
		holdPartial: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get().Named("tail")
	}
	return t
}

// Tail reads logID from byte offset from up to the current end of file.
//
// A missing file yields Missing with the cursor unchanged. When the file is
// smaller than from it was rotated, and reading restarts at 0. Transport
// failures return an error wrapping ErrTransport; the caller must keep its
// cursor so the same range is retried.
func (t *TailReader) Tail(ctx context.Context, logID string, from uint64) (Chunk, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	sess, err := t.dialer.Dial(ctx)
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			t.logger.Debug(ctx, "closing remote session", logger.Error(cerr))
		}
	}()

	size, err := sess.Size(ctx, logID)
	if errors.Is(err, ErrNotFound) {
		return Chunk{Offset: from, Missing: true}, nil
	}
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	chunk := Chunk{Offset: from}
	if size < from {
		t.logger.Info(ctx, "log rotated, reading from start",
			logger.String("log", logID),
			logger.Uint64("size", size),
			logger.Uint64("offset", from))
		metrics.RecordLogRotation()
		from = 0
		chunk = Chunk{Offset: 0, Rotated: true}
	}
	if size == from {
		return chunk, nil
	}

	rc, err := sess.ReadFrom(ctx, logID, from)
	if errors.Is(err, ErrNotFound) {
		return Chunk{Offset: from, Missing: true, Rotated: chunk.Rotated}, nil
	}
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, int64(size-from)))
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: read %s@%d: %w", ErrTransport, logID, from, err)
	}

	if t.holdPartial {
		data = completeLines(data)
	}

	text, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		// The UTF-8 decoder replaces invalid input rather than failing.
		return Chunk{}, fmt.Errorf("decode %s@%d: %w", logID, from, err)
	}

	metrics.RecordTailBytes(len(data))
	chunk.Text = string(text)
	chunk.Offset = from + uint64(len(data))
	return chunk, nil
}

// completeLines trims data after its last newline.
func completeLines(data []byte) []byte {
	i := bytes.LastIndexByte(data, '\n')
	if i < 0 {
		return nil
	}
	return data[:i+1]
}
