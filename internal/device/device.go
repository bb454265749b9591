// Package device provides the byte-oriented link to the real terminal
// hardware or a remote endpoint. Implementations exist for serial
// ports, generic stream URLs, and an in-memory pipe for tests.
//
// Faults are explicit error returns; the session orchestrator owns the
// single fault-propagation path.
package device

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// readTimeout bounds every blocking read so shutdown checks and echo
// drains are serviced promptly even when the link cannot interrupt a
// pending read.
const readTimeout = time.Second

// Sentinel errors.
var (
	// ErrReadTimeout reports that a read returned without a byte. Not a
	// fault; the caller simply retries.
	ErrReadTimeout = errors.New("read timed out")

	// ErrClosed reports use of a closed device.
	ErrClosed = errors.New("device closed")
)

// LinkError is a device fault during an active session.
type LinkError struct {
	Op  string // "read", "write", "open"
	Err error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// Parity is the serial parity mode.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
	ParityMark
	ParitySpace
)

// String returns the single-letter form used by configuration.
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "N"
	case ParityEven:
		return "E"
	case ParityOdd:
		return "O"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// Options selects and configures the link target. URL takes precedence
// over the serial parameters when set.
type Options struct {
	// URL is a generic stream target, e.g. "tcp://host:port".
	URL string

	// Serial parameters, used when URL is empty.
	Port     string
	Baud     int
	DataBits int // 5, 6, 7 or 8
	Parity   Parity
	StopBits int // 1 or 2

	// Flow control and line state. The serial backend cannot express
	// flow control; the application warns when these are requested.
	RTSCTSFlow  bool
	XONXOFFFlow bool
	InitialDTR  bool
	InitialRTS  bool

	// Exclusive requests an exclusive open for native ports.
	Exclusive bool
}

// Device is the byte-oriented capability surface the session uses.
// Implementations must allow CancelRead and Close to be called from a
// different goroutine than the reader.
type Device interface {
	// ReadByte returns the next byte from the link. It blocks at most
	// about a second and returns ErrReadTimeout when no byte arrived;
	// any other error is a link fault.
	ReadByte() (byte, error)

	// WriteByte transmits one byte. An error is a link fault.
	WriteByte(b byte) error

	// CancelRead unblocks a pending ReadByte promptly when the link
	// supports interruption. Links that cannot interrupt rely on the
	// short read timeout instead.
	CancelRead()

	// Close releases the link.
	Close() error
}

// Open connects to the target described by opts.
func Open(opts Options) (Device, error) {
	if opts.URL != "" {
		return OpenStream(opts.URL)
	}
	return OpenSerial(opts)
}

// splitScheme returns the scheme and remainder of a stream URL.
func splitScheme(url string) (scheme, rest string, ok bool) {
	i := strings.Index(url, "://")
	if i < 0 {
		return "", "", false
	}
	return url[:i], url[i+3:], true
}
