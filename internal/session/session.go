// Package session runs a terminal session: the output pump that feeds
// link bytes through the protocol decoder onto the display, the input
// pump that translates key events into link writes, local echo, and
// the fault and shutdown sequencing between them.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/velsom/centterm/internal/device"
	"github.com/velsom/centterm/internal/key"
	"github.com/velsom/centterm/internal/logging"
	"github.com/velsom/centterm/internal/term"
)

// Session errors.
var (
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrStopped indicates Start was called after the session was
	// already asked to stop.
	ErrStopped = errors.New("session stopped")
)

// Polling bounds. The output pump's wait lives inside the device read
// timeout; these cover the input side and the fault confirm wait.
const (
	keyPollTimeout = 250 * time.Millisecond
	disabledSleep  = 50 * time.Millisecond
)

// echoCapacity bounds the echo queue. The queue only ever holds bytes
// typed between two output-pump drains, so the bound is generous;
// overflow drops the echo byte rather than deadlocking shutdown.
const echoCapacity = 1024

// State is the session lifecycle state.
type State int32

const (
	// StateCreated is the state before Start.
	StateCreated State = iota

	// StateRunning means both pumps are active.
	StateRunning

	// StateStopping means shutdown was requested and the pumps are
	// winding down.
	StateStopping

	// StateStopped is terminal; the session cannot be reused.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Display is the surface the output pump renders to. *screen.Screen
// implements it.
type Display interface {
	// Apply performs one display operation.
	Apply(op term.Op)

	// Flush pushes pending changes to the display.
	Flush()

	// Notice renders a bold diagnostic line.
	Notice(msg string)
}

// KeySource supplies key events to the input pump.
type KeySource interface {
	// Poll returns the next key event, waiting at most timeout.
	Poll(timeout time.Duration) (key.Event, bool)

	// Unread pushes an event back for the next Poll.
	Unread(ev key.Event)
}

// Options configures a session.
type Options struct {
	Device  device.Device
	Display Display
	Keys    KeySource
	Logger  *logging.Logger

	// LocalEcho loops transmitted bytes back through the decoder so
	// typed characters appear without a round trip over the link.
	LocalEcho bool
}

// Session orchestrates one terminal session. Create with New, drive
// with Start and Join; RequestStop is safe from any goroutine.
type Session struct {
	dev       device.Device
	display   Display
	keys      KeySource
	log       *logging.Logger
	localEcho bool

	decoder *term.Decoder
	echo    chan byte

	state        atomic.Int32
	inputEnabled atomic.Bool
	devFailed    atomic.Bool

	faultOnce  sync.Once
	renderOnce sync.Once
	faultMu    sync.Mutex
	faultErr   error

	wg sync.WaitGroup
}

// New creates a session in the Created state.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logging.NewLogger(logging.LoggerConfig{})
		log.Disable()
	}
	return &Session{
		dev:       opts.Device,
		display:   opts.Display,
		keys:      opts.Keys,
		log:       log.WithComponent("session"),
		localEcho: opts.LocalEcho,
		decoder:   term.NewDecoder(),
		echo:      make(chan byte, echoCapacity),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Start launches the output and input pumps and enables input.
func (s *Session) Start() error {
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		if st := s.State(); st == StateStopping || st == StateStopped {
			return ErrStopped
		}
		return ErrAlreadyStarted
	}

	s.inputEnabled.Store(true)
	s.wg.Add(2)
	go s.outputPump()
	go s.inputPump()

	s.log.Info("session started (echo=%v)", s.localEcho)
	return nil
}

// RequestStop asks the session to shut down. It is idempotent and safe
// to call from any goroutine, including a signal handler. A pending
// device read is canceled so the pumps notice promptly. A stop before
// Start sticks: the session refuses to launch afterwards.
func (s *Session) RequestStop() {
	s.inputEnabled.Store(false)
	if s.state.CompareAndSwap(int32(StateCreated), int32(StateStopping)) {
		s.log.Info("stop requested before start")
	}
	if s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		s.log.Info("stop requested")
	}
	s.dev.CancelRead()
}

// Join blocks until both pumps have exited and returns the fault that
// ended the session, if any. User-requested shutdown returns nil.
func (s *Session) Join() error {
	s.wg.Wait()
	s.state.Store(int32(StateStopped))

	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faultErr
}

// Err returns the recorded link fault, if any.
func (s *Session) Err() error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faultErr
}

func (s *Session) running() bool {
	return s.State() == StateRunning
}

// outputPump drains the echo queue through the decoder, then performs
// one device read per iteration. Read timeouts are the idle loop that
// keeps echo service and shutdown checks responsive.
func (s *Session) outputPump() {
	defer s.wg.Done()

	for s.running() {
		drained := s.drainEcho()

		if s.devFailed.Load() {
			// The link is gone. The display belongs to this pump, so
			// the diagnostic renders here no matter which pump saw the
			// fault first.
			if drained {
				s.display.Flush()
			}
			s.resolveFault()
			time.Sleep(disabledSleep)
			continue
		}

		b, err := s.dev.ReadByte()
		switch {
		case err == nil:
			s.decode(b)
			s.display.Flush()
		case errors.Is(err, device.ErrReadTimeout):
			if drained {
				s.display.Flush()
			}
		case errors.Is(err, device.ErrClosed):
			if s.running() {
				s.recordFault(err)
			}
		default:
			s.recordFault(err)
		}
	}
	s.log.Debug("output pump exited")
}

// drainEcho runs every queued echo byte through the decoder. It never
// blocks; it reports whether anything was rendered.
func (s *Session) drainEcho() bool {
	drained := false
	for {
		select {
		case b := <-s.echo:
			s.decode(b)
			drained = true
		default:
			return drained
		}
	}
}

func (s *Session) decode(b byte) {
	for _, op := range s.decoder.Consume(b) {
		s.display.Apply(op)
	}
}

// inputPump translates key events into link writes. While input is
// disabled it idles; an event that slipped in while disabling is
// pushed back so no keystroke is lost.
func (s *Session) inputPump() {
	defer s.wg.Done()

	for s.running() {
		if !s.inputEnabled.Load() {
			time.Sleep(disabledSleep)
			continue
		}

		ev, ok := s.keys.Poll(keyPollTimeout)
		if !ok {
			continue
		}
		if !s.inputEnabled.Load() {
			s.keys.Unread(ev)
			continue
		}

		bytes, action := term.Translate(ev)
		if action == term.ActionStop {
			s.log.Info("exit key (%v)", ev)
			s.RequestStop()
			continue
		}

		for _, b := range bytes {
			if s.localEcho {
				s.enqueueEcho(b)
				// Wake the output pump so the echo renders now, not
				// after its read timeout.
				s.dev.CancelRead()
			}
			if err := s.dev.WriteByte(b); err != nil {
				s.recordFault(err)
				break
			}
		}
	}
	s.log.Debug("input pump exited")
}

// enqueueEcho queues a byte for local re-decoding. A full queue drops
// the byte; blocking here could deadlock shutdown.
func (s *Session) enqueueEcho(b byte) {
	select {
	case s.echo <- b:
	default:
		s.log.Warn("echo queue full, dropping byte %#02x", b)
	}
}

// recordFault records the first link fault and disables the link and
// input. Safe from either pump: it never touches the display, which
// only the output pump may mutate. The pending read is canceled so the
// output pump notices the fault promptly.
func (s *Session) recordFault(err error) {
	s.faultOnce.Do(func() {
		s.faultMu.Lock()
		s.faultErr = err
		s.faultMu.Unlock()

		s.log.Error("link fault: %v", err)
		s.inputEnabled.Store(false)
		s.devFailed.Store(true)
		s.dev.CancelRead()
	})
}

// resolveFault renders the fault diagnostic and waits for a confirming
// key, then requests shutdown. Runs on the output pump only, and only
// once.
func (s *Session) resolveFault() {
	s.renderOnce.Do(func() {
		s.faultMu.Lock()
		err := s.faultErr
		s.faultMu.Unlock()

		if s.display != nil {
			s.display.Notice(fmt.Sprintf("Link failure: %v", err))
			s.display.Notice("Press any key to exit.")
			s.waitForConfirm()
		}
		s.RequestStop()
	})
}

// waitForConfirm blocks for one key event acknowledging the fault.
// A concurrent stop request also releases the wait.
func (s *Session) waitForConfirm() {
	for s.running() {
		if _, ok := s.keys.Poll(keyPollTimeout); ok {
			return
		}
	}
}
