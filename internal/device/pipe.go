package device

import (
	"sync"
	"time"
)

// Pipe is an in-memory Device for tests. The test plays the role of
// the remote terminal hardware: HostSend feeds bytes the device will
// read, and Sent reports bytes the session wrote. Read and write
// faults can be injected to exercise the fault path.
type Pipe struct {
	in     chan byte
	closed chan struct{}

	mu        sync.Mutex
	cancel    chan struct{}
	sent      []byte
	readErr   error
	writeErr  error
	canceled  int
	timeout   time.Duration
	closeOnce sync.Once
}

// NewPipe creates a pipe with a short read timeout suitable for tests.
func NewPipe() *Pipe {
	return &Pipe{
		in:      make(chan byte, 256),
		closed:  make(chan struct{}),
		cancel:  make(chan struct{}),
		timeout: 20 * time.Millisecond,
	}
}

func (p *Pipe) ReadByte() (byte, error) {
	p.mu.Lock()
	err := p.readErr
	cancel := p.cancel
	timeout := p.timeout
	p.mu.Unlock()

	if err != nil {
		return 0, &LinkError{Op: "read", Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b := <-p.in:
		return b, nil
	case <-timer.C:
		return 0, ErrReadTimeout
	case <-cancel:
		return 0, ErrReadTimeout
	case <-p.closed:
		return 0, ErrClosed
	}
}

func (p *Pipe) WriteByte(b byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeErr != nil {
		return &LinkError{Op: "write", Err: p.writeErr}
	}
	p.sent = append(p.sent, b)
	return nil
}

// CancelRead wakes every pending read.
func (p *Pipe) CancelRead() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.canceled++
	close(p.cancel)
	p.cancel = make(chan struct{})
}

func (p *Pipe) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

// HostSend queues bytes for the device to read.
func (p *Pipe) HostSend(data ...byte) {
	for _, b := range data {
		p.in <- b
	}
}

// Sent returns a copy of everything written to the device.
func (p *Pipe) Sent() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]byte, len(p.sent))
	copy(out, p.sent)
	return out
}

// CancelCount reports how many times CancelRead ran.
func (p *Pipe) CancelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

// FailReads makes every subsequent read report a link fault.
func (p *Pipe) FailReads(err error) {
	p.mu.Lock()
	p.readErr = err
	p.mu.Unlock()
	p.CancelRead()
}

// FailWrites makes every subsequent write report a link fault.
func (p *Pipe) FailWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}
