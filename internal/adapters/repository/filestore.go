package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/pzwatch/pkg/logger"
	"github.com/okian/pzwatch/pkg/metrics"
)

// FileStore keeps the snapshot in one JSON file. Saves write <path>.tmp and
// rename it over path, so a crash leaves either the old or the new file.
type FileStore struct {
	path   string
	perm   fs.FileMode
	logger logger.Logger
}

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithFileMode sets the permission bits for new snapshot files.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *FileStore) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// WithLogger sets the logger instance.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("snapshot")
	}
	return s
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the snapshot. A missing file yields an empty snapshot.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info(ctx, "no snapshot found, starting empty", logger.String("path", s.path))
		return Empty(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	snap, err := decodeSnapshot(b)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, s.path, err)
	}
	s.logger.Info(ctx, "snapshot loaded",
		logger.String("path", s.path),
		logger.Int("players", len(snap.Players)),
		logger.Int("cursors", len(snap.Cursors)))
	return snap, nil
}

// Save writes snap atomically.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) (err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		metrics.RecordSnapshotSave(result, time.Since(start))
	}()

	b, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSaveSnapshot, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := writeFileSync(tmp, b, s.perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %w", ErrSaveSnapshot, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %w", ErrSaveSnapshot, tmp, err)
	}

	s.logger.Debug(ctx, "snapshot saved",
		logger.String("path", s.path),
		logger.Int("players", len(snap.Players)),
		logger.Int("bytes", len(b)))
	return nil
}

func writeFileSync(path string, b []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
