package screen

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/velsom/centterm/internal/key"
)

// KeySource delivers key events from a backend with a bounded wait, a
// single-slot push-back for events that arrived while input was
// disabled, and a single-slot synthetic interrupt that an OS signal
// handler can arm from any goroutine.
type KeySource struct {
	backend Backend
	events  chan key.Event
	quit    chan struct{}

	// interrupted is the pending synthetic interrupt slot. It is
	// checked before blocking so the interrupt travels the same path
	// as ordinary input.
	interrupted atomic.Bool

	mu     sync.Mutex
	unread *key.Event

	closeOnce sync.Once
}

// NewKeySource starts reading events from the backend.
func NewKeySource(backend Backend) *KeySource {
	ks := &KeySource{
		backend: backend,
		events:  make(chan key.Event, 16),
		quit:    make(chan struct{}),
	}
	go ks.readLoop()
	return ks
}

// readLoop pumps backend events into the event channel until the
// backend shuts down or the source is closed.
func (ks *KeySource) readLoop() {
	for {
		ev := ks.backend.PollEvent()
		switch ev.Type {
		case EventKey:
			select {
			case ks.events <- ev.Key:
			case <-ks.quit:
				return
			}
		case EventInterrupt:
			// Claim the pending interrupt and deliver it as a key
			// event so a blocked Poll wakes promptly. If the wakeup
			// was dropped the slot stays armed for the next Poll.
			if ks.interrupted.CompareAndSwap(true, false) {
				select {
				case ks.events <- key.NewSpecialEvent(key.KeyInterrupt):
				case <-ks.quit:
					return
				}
			}
		case EventQuit:
			return
		}
		select {
		case <-ks.quit:
			return
		default:
		}
	}
}

// Poll returns the next key event, waiting at most timeout. The
// push-back slot and the pending interrupt are served before blocking.
func (ks *KeySource) Poll(timeout time.Duration) (key.Event, bool) {
	ks.mu.Lock()
	if ks.unread != nil {
		ev := *ks.unread
		ks.unread = nil
		ks.mu.Unlock()
		return ev, true
	}
	ks.mu.Unlock()

	if ks.interrupted.CompareAndSwap(true, false) {
		return key.NewSpecialEvent(key.KeyInterrupt), true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-ks.events:
		return ev, true
	case <-timer.C:
		return key.Event{}, false
	case <-ks.quit:
		return key.Event{}, false
	}
}

// Unread pushes an event back so the next Poll returns it first. No
// keystroke is lost when input is disabled mid-wait.
func (ks *KeySource) Unread(ev key.Event) {
	ks.mu.Lock()
	ks.unread = &ev
	ks.mu.Unlock()
}

// Interrupt arms the synthetic interrupt. Safe to call from a signal
// handling goroutine.
func (ks *KeySource) Interrupt() {
	ks.interrupted.Store(true)
	// Wake a blocked Poll through the backend's event queue.
	ks.backend.PostEvent(Event{Type: EventInterrupt})
}

// Close stops the reader. The backend is shut down separately.
func (ks *KeySource) Close() {
	ks.closeOnce.Do(func() {
		close(ks.quit)
		ks.backend.PostEvent(Event{Type: EventQuit})
	})
}
