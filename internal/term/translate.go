package term

import "github.com/velsom/centterm/internal/key"

// Action is a local control request produced by input translation
// instead of (or in addition to) bytes for the host.
type Action int

const (
	// ActionNone means the event produced only bytes, or nothing.
	ActionNone Action = iota

	// ActionStop requests session shutdown. No bytes are transmitted.
	ActionStop
)

// Translate maps a key event to the byte sequence the terminal
// transmits for it. It is stateless and deterministic.
//
// Printable and control ASCII passes through unchanged except for LF,
// which the keyboard sends as CR. Named keys map to the single control
// bytes the terminal uses for cursor motion and editing. The exit and
// interrupt keys request shutdown; unmapped keys produce nothing.
func Translate(ev key.Event) ([]byte, Action) {
	switch ev.Key {
	case key.KeyRune:
		r := ev.Rune
		if r == '\n' {
			return []byte{ctrlCR}, ActionNone
		}
		if r >= 0 && r <= 127 {
			return []byte{byte(r)}, ActionNone
		}
		return nil, ActionNone
	case key.KeyDown:
		return []byte{ctrlLF}, ActionNone
	case key.KeyUp:
		return []byte{ctrlSUB}, ActionNone
	case key.KeyLeft:
		return []byte{ctrlNAK}, ActionNone
	case key.KeyRight:
		return []byte{ctrlACK}, ActionNone
	case key.KeyHome:
		return []byte{ctrlSOH}, ActionNone
	case key.KeyClear:
		return []byte{ctrlFF}, ActionNone
	case key.KeyDelete:
		return []byte{ctrlDEL}, ActionNone
	case key.KeyBackspace:
		return []byte{ctrlBS}, ActionNone
	case key.KeyExit, key.KeyInterrupt:
		return nil, ActionStop
	default:
		return nil, ActionNone
	}
}
