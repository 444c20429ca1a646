package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPDialer connects to an FTP server with username/password auth.
type FTPDialer struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// Dial connects and logs in.
//
// Every connection of the session, control and data, carries the deadline
// of ctx, and all of them are closed when ctx is cancelled. A stalled
// server therefore fails the call instead of blocking it.
func (d FTPDialer) Dial(ctx context.Context) (Session, error) {
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	s := &ftpSession{}
	dialer := net.Dialer{Timeout: d.Timeout}
	dial := func(network, address string) (net.Conn, error) {
		c, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := c.SetDeadline(deadline); err != nil {
				_ = c.Close()
				return nil, err
			}
		}
		if !s.track(c) {
			_ = c.Close()
			return nil, ctx.Err()
		}
		return c, nil
	}
	s.stop = context.AfterFunc(ctx, s.abort)

	conn, err := ftp.Dial(addr, ftp.DialWithDialFunc(dial))
	if err != nil {
		s.release()
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	s.conn = conn
	if err := conn.Login(d.User, d.Password); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("login %s: %w", addr, err)
	}
	return s, nil
}

type ftpSession struct {
	conn *ftp.ServerConn
	stop func() bool

	mu      sync.Mutex
	open    []net.Conn
	aborted bool
}

// track registers c for abort. It reports false once the session was aborted.
func (s *ftpSession) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted {
		return false
	}
	s.open = append(s.open, c)
	return true
}

// abort closes every connection of the session, unblocking pending I/O.
func (s *ftpSession) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
	for _, c := range s.open {
		_ = c.Close()
	}
	s.open = nil
}

// release detaches the session from its context and closes what is left.
func (s *ftpSession) release() {
	s.stop()
	s.abort()
}

func (s *ftpSession) Size(_ context.Context, path string) (uint64, error) {
	n, err := s.conn.FileSize(path)
	if err != nil {
		if isUnavailable(err) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, fmt.Errorf("size %s: %w", path, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("size %s: negative size %d", path, n)
	}
	return uint64(n), nil
}

func (s *ftpSession) ReadFrom(_ context.Context, path string, offset uint64) (io.ReadCloser, error) {
	resp, err := s.conn.RetrFrom(path, offset)
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("retr %s@%d: %w", path, offset, err)
	}
	return resp, nil
}

func (s *ftpSession) Close() error {
	defer s.release()
	return s.conn.Quit()
}

// isUnavailable reports an FTP 550 reply (file unavailable / not found).
func isUnavailable(err error) bool {
	var tp *textproto.Error
	return errors.As(err, &tp) && tp.Code == ftp.StatusFileUnavailable
}
