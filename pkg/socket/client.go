// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

var (
	// ErrTimeout is returned by Poll when the response did not complete in time.
	ErrTimeout = errors.New("timed out waiting for response")
	// ErrNotConnected is returned when an operation needs a connection and there is none.
	ErrNotConnected = errors.New("not connected")
)

// New returns a new pointer to a socket client for the given config.
func New(cfg Config) *Socket {
	return &Socket{Config: cfg}
}

// Socket is the implementation of a socket client.
type Socket struct {
	Config
	conn net.Conn
	buf  []byte
}

// Connect dials the configured address. The target is usually started right
// before, so a refused connection is retried ConnectAttempts times,
// RetryInterval apart, before the last dial error is returned.
func (s *Socket) Connect(ctx context.Context) error {
	if s.conn != nil {
		return errors.New("already connected")
	}

	network, address := parseAddress(s.Address)
	d := net.Dialer{Timeout: s.connectTimeout()}

	var err error
	for attempt := 1; ; attempt++ {
		var conn net.Conn
		if conn, err = d.DialContext(ctx, network, address); err == nil {
			s.conn = conn
			return nil
		}
		if attempt >= s.connectAttempts() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryInterval()):
		}
	}

	return fmt.Errorf("dial %s after %d attempts: %w", s.Address, s.connectAttempts(), err)
}

// Disconnect closes the connection. Safe to call when not connected.
func (s *Socket) Disconnect() (err error) {
	if s.conn != nil {
		err = s.conn.Close()
		s.conn = nil
	}
	return err
}

// Connected reports whether Connect succeeded and Disconnect was not called since.
func (s *Socket) Connected() bool {
	return s.conn != nil
}

func (s *Socket) Write(data []byte) error {
	if s.conn == nil {
		return ErrNotConnected
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
		return err
	}

	_, err := s.conn.Write(data)

	return err
}

// Poll reads from the connection in polls of PollInterval and passes every
// non-empty chunk to process. It returns when process reports completion,
// when process fails, when the peer closes the connection (io.EOF) or when
// timeout elapses (ErrTimeout). A zero timeout waits until ctx is done.
func (s *Socket) Poll(ctx context.Context, timeout time.Duration, process Processor) error {
	if process == nil {
		return errors.New("process func is nil")
	}
	if s.conn == nil {
		return ErrNotConnected
	}

	if s.buf == nil {
		s.buf = make([]byte, 4096)
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(s.pollInterval())); err != nil {
			return err
		}

		n, err := s.conn.Read(s.buf)
		if n > 0 {
			done, perr := process(s.buf[:n])
			if perr != nil {
				return perr
			}
			if done {
				return nil
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, os.ErrDeadlineExceeded):
		case errors.Is(err, io.EOF):
			return io.EOF
		default:
			return err
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return ErrTimeout
		}
	}
}

func (s *Socket) connectTimeout() time.Duration {
	if s.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return s.ConnectTimeout
}

func (s *Socket) connectAttempts() int {
	if s.ConnectAttempts <= 0 {
		return defaultConnectAttempts
	}
	return s.ConnectAttempts
}

func (s *Socket) retryInterval() time.Duration {
	if s.RetryInterval <= 0 {
		return defaultRetryInterval
	}
	return s.RetryInterval
}

func (s *Socket) writeTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return defaultWriteTimeout
	}
	return s.WriteTimeout
}

func (s *Socket) pollInterval() time.Duration {
	if s.PollInterval <= 0 {
		return defaultPollInterval
	}
	return s.PollInterval
}
