package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FileDialer serves logs from the local filesystem. Paths are used as given.
type FileDialer struct{}

// Dial returns a local session; it never fails.
func (FileDialer) Dial(context.Context) (Session, error) {
	return fileSession{}, nil
}

type fileSession struct{}

func (fileSession) Size(_ context.Context, path string) (uint64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, err
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("%s: is a directory", path)
	}
	return uint64(fi.Size()), nil
}

func (fileSession) ReadFrom(_ context.Context, path string, offset uint64) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func (fileSession) Close() error { return nil }
