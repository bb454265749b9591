// Package screen provides the display surface of the emulator: a
// backend abstraction over the real terminal, the 80x24 character grid
// with the Centurion cursor edge policy, and the key event source.
package screen

import "github.com/velsom/centterm/internal/key"

// Cell is a single character cell on the display.
type Cell struct {
	// Rune is the displayed character. The zero value renders as blank.
	Rune rune

	// Reverse selects reverse-video rendering.
	Reverse bool

	// Bold selects bold rendering (used for diagnostic lines).
	Bold bool
}

// EventType identifies the type of backend event.
type EventType int

const (
	// EventNone is an event the emulator ignores (mouse, focus, paste).
	EventNone EventType = iota

	// EventKey carries a key press.
	EventKey

	// EventInterrupt is a synthetic wakeup posted into the event queue.
	EventInterrupt

	// EventResize reports new terminal dimensions.
	EventResize

	// EventQuit reports that the backend has shut down and no further
	// events will arrive.
	EventQuit
)

// Event is a backend event.
type Event struct {
	Type EventType

	// Key is the key press for EventKey.
	Key key.Event

	// Width and Height are the dimensions for EventResize.
	Width, Height int
}

// Backend defines the interface for display backends. Implementations
// handle actual drawing to the terminal or, for tests, to memory.
type Backend interface {
	// Init initializes the backend. Must be called before any other
	// method.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetCell sets a single cell. Positions outside the terminal are
	// silently ignored.
	SetCell(x, y int, cell Cell)

	// Clear clears the entire display.
	Clear()

	// Show synchronizes the internal buffer with the actual display.
	Show()

	// ShowCursor positions and displays the hardware cursor.
	ShowCursor(x, y int)

	// HideCursor hides the hardware cursor.
	HideCursor()

	// Beep produces the audible tone.
	Beep()

	// PollEvent waits for and returns the next event. After Shutdown it
	// returns an EventQuit event.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(ev Event)
}
