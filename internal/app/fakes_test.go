package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/pzwatch/internal/adapters/remote"
	"github.com/okian/pzwatch/internal/adapters/repository"
	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/pkg/logger"
)

func init() {
	_ = logger.Init()
}

var errTransport = errors.New("connection refused")

// fakeLog serves appended text as successive chunks.
type fakeLog struct {
	content string
	missing bool
	err     error
	calls   int
}

func (f *fakeLog) Tail(_ context.Context, _ string, from uint64) (remote.Chunk, error) {
	f.calls++
	if f.err != nil {
		return remote.Chunk{}, f.err
	}
	if f.missing {
		return remote.Chunk{Missing: true, Offset: from}, nil
	}
	size := uint64(len(f.content))
	if size < from {
		return remote.Chunk{Text: f.content, Offset: size, Rotated: true}, nil
	}
	return remote.Chunk{Text: f.content[from:], Offset: size}, nil
}

func (f *fakeLog) append(lines ...string) {
	for _, l := range lines {
		f.content += l + "\n"
	}
}

// memRepo keeps the last saved snapshot in memory.
type memRepo struct {
	snap    repository.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memRepo) Load(context.Context) (repository.Snapshot, error) {
	if m.loadErr != nil {
		return repository.Snapshot{}, m.loadErr
	}
	return m.snap.Clone(), nil
}

func (m *memRepo) Save(_ context.Context, s repository.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snap = s.Clone()
	return nil
}

// recordingSink captures every notification.
type recordingSink struct {
	mu   sync.Mutex
	msgs []model.Message
	err  error
}

func (s *recordingSink) Notify(_ context.Context, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSink) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, m.Title)
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
