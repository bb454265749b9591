package device

import (
	"fmt"
	"sync/atomic"

	"go.bug.st/serial"
)

// Serial is a Device over a local serial port.
//
// The port cannot interrupt a pending read, so CancelRead is a no-op
// and the short read timeout bounds shutdown latency instead.
type Serial struct {
	port   serial.Port
	closed atomic.Bool
}

// OpenSerial opens and configures a serial port from opts.
func OpenSerial(opts Options) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: opts.Baud,
		DataBits: opts.DataBits,
		Parity:   convertParity(opts.Parity),
		StopBits: convertStopBits(opts.StopBits),
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: opts.InitialRTS,
			DTR: opts.InitialDTR,
		},
	}

	port, err := serial.Open(opts.Port, mode)
	if err != nil {
		return nil, &LinkError{Op: "open", Err: fmt.Errorf("port %q: %w", opts.Port, err)}
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, &LinkError{Op: "open", Err: err}
	}

	return &Serial{port: port}, nil
}

func (s *Serial) ReadByte() (byte, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		if s.closed.Load() {
			return 0, ErrClosed
		}
		return 0, &LinkError{Op: "read", Err: err}
	}
	if n == 0 {
		// The port timeout elapsed without data.
		return 0, ErrReadTimeout
	}
	return buf[0], nil
}

func (s *Serial) WriteByte(b byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	if _, err := s.port.Write([]byte{b}); err != nil {
		return &LinkError{Op: "write", Err: err}
	}
	return nil
}

// CancelRead is a no-op; the read timeout is the fallback.
func (s *Serial) CancelRead() {}

func (s *Serial) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.port.Close()
}

func convertParity(p Parity) serial.Parity {
	switch p {
	case ParityEven:
		return serial.EvenParity
	case ParityOdd:
		return serial.OddParity
	case ParityMark:
		return serial.MarkParity
	case ParitySpace:
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func convertStopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}
