// Package key defines the keyboard event model shared by the input
// pipeline. Events originate from the screen backend or are synthesized
// by the session (interrupt injection) and are consumed by the
// terminal's input translator.
package key

import "fmt"

// Key identifies a key on the keyboard.
type Key int

// Key constants. KeyRune carries a character in the Rune field; the
// remainder are the named keys the terminal protocol cares about.
const (
	KeyNone Key = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyClear
	KeyDelete
	KeyBackspace
	KeyExit
	KeyInterrupt
)

// String returns a readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyRune:
		return "Rune"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyHome:
		return "Home"
	case KeyClear:
		return "Clear"
	case KeyDelete:
		return "Delete"
	case KeyBackspace:
		return "Backspace"
	case KeyExit:
		return "Exit"
	case KeyInterrupt:
		return "Interrupt"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// Event represents a single key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune
}

// NewRuneEvent creates an event for a character key.
func NewRuneEvent(r rune) Event {
	return Event{Key: KeyRune, Rune: r}
}

// NewSpecialEvent creates an event for a named key.
func NewSpecialEvent(k Key) Event {
	return Event{Key: k}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune
}

// String returns a canonical representation, e.g. "a" or "Home".
func (e Event) String() string {
	if e.IsRune() {
		return string(e.Rune)
	}
	return e.Key.String()
}
