package device

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// Stream is a Device over a network byte stream. A pending read is
// interrupted by forcing the read deadline into the past.
type Stream struct {
	conn   net.Conn
	closed atomic.Bool
}

// OpenStream connects to a stream URL. Supported schemes are "tcp://"
// and its alias "socket://", both giving a raw byte stream with no
// protocol negotiation on top.
func OpenStream(url string) (*Stream, error) {
	scheme, addr, ok := splitScheme(url)
	if !ok {
		return nil, &LinkError{Op: "open", Err: fmt.Errorf("malformed url %q", url)}
	}

	switch scheme {
	case "tcp", "socket":
		conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
		if err != nil {
			return nil, &LinkError{Op: "open", Err: err}
		}
		return &Stream{conn: conn}, nil
	default:
		return nil, &LinkError{Op: "open", Err: fmt.Errorf("unsupported url scheme %q", scheme)}
	}
}

func (s *Stream) ReadByte() (byte, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return 0, &LinkError{Op: "read", Err: err}
	}

	var buf [1]byte
	n, err := s.conn.Read(buf[:])
	if n == 1 {
		return buf[0], nil
	}
	if err != nil {
		if s.closed.Load() {
			return 0, ErrClosed
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			// Deadline elapsed, or CancelRead fired. Either way the
			// caller retries.
			return 0, ErrReadTimeout
		}
		return 0, &LinkError{Op: "read", Err: err}
	}
	return 0, ErrReadTimeout
}

func (s *Stream) WriteByte(b byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	if _, err := s.conn.Write([]byte{b}); err != nil {
		return &LinkError{Op: "write", Err: err}
	}
	return nil
}

// CancelRead unblocks a pending ReadByte by expiring its deadline.
// The interrupted read reports a timeout, not a fault.
func (s *Stream) CancelRead() {
	_ = s.conn.SetReadDeadline(time.Now())
}

func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}
