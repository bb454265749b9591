package term

import "fmt"

// Control bytes understood by the terminal. The names follow the ASCII
// mnemonics the Centurion documentation uses.
const (
	ctrlSOH = 0x01 // cursor home
	ctrlSTX = 0x02 // keyboard unlock (consumed, no action)
	ctrlEOT = 0x04 // keyboard lock (consumed, no action)
	ctrlACK = 0x06 // cursor forward
	ctrlBEL = 0x07 // audible tone
	ctrlBS  = 0x08 // cursor back
	ctrlLF  = 0x0A // cursor down
	ctrlVT  = 0x0B // cursor move vertical, next byte is the row
	ctrlFF  = 0x0C // erase all
	ctrlCR  = 0x0D // cursor to line start
	ctrlDLE = 0x10 // cursor move horizontal, next byte encodes the column
	ctrlNAK = 0x15 // cursor back (alternate)
	ctrlSUB = 0x1A // cursor up
	ctrlESC = 0x1B // escape sequence introducer
	ctrlDEL = 0x7F // rubout: blanks the cell under the cursor
)

// Escape sequence selectors (the byte following ESC).
const (
	escCursorAbsolute   = 'Y'
	escEraseToLineEnd   = 'K'
	escEraseToScreenEnd = 'k'
	escTransparentData  = 'Z'
	escTransparentOn    = '3' // reserved, consumed without action
	escTransparentOff   = '4' // reserved, consumed without action
	escKeyboardLock     = '5' // reserved, consumed without action
	escKeyboardUnlock   = '6' // reserved, consumed without action
)

// Glyphs substituted for bytes that have no printable form.
const (
	glyphMiddleDot = '·' // rendered for NUL
	glyphDarkShade = '▓' // rendered for DEL in transparent mode
)

// State is the decoder state. Exactly one value is active; every
// consumed byte performs exactly one transition, and every escape state
// returns to StateNormal within at most three bytes.
type State int

const (
	// StateNormal decodes control codes and renders printable bytes.
	StateNormal State = iota

	// StateEscape has consumed ESC and selects a command from the next
	// byte.
	StateEscape

	// StateCursorAbsCol has consumed ESC Y and reads the column byte.
	StateCursorAbsCol

	// StateCursorAbsRow has read the column and reads the row byte.
	StateCursorAbsRow

	// StateCursorHorz has consumed DLE and reads the encoded column.
	StateCursorHorz

	// StateCursorVert has consumed VT and reads the row.
	StateCursorVert

	// StateTransparent has consumed ESC Z; the next byte renders as
	// data regardless of its control meaning.
	StateTransparent
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNormal:
		return "Normal"
	case StateEscape:
		return "Escape"
	case StateCursorAbsCol:
		return "CursorAbsCol"
	case StateCursorAbsRow:
		return "CursorAbsRow"
	case StateCursorHorz:
		return "CursorHorz"
	case StateCursorVert:
		return "CursorVert"
	case StateTransparent:
		return "Transparent"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Decoder is the output side of the terminal protocol. It consumes one
// byte at a time from the host link and emits display operations. It
// holds no reference to the display; callers apply the returned ops.
type Decoder struct {
	state  State
	absCol byte // pending column while decoding ESC Y
}

// NewDecoder returns a decoder in the normal state.
func NewDecoder() *Decoder {
	return &Decoder{state: StateNormal}
}

// State returns the current decoder state.
func (d *Decoder) State() State {
	return d.state
}

// Reset returns the decoder to the normal state, dropping any pending
// escape arguments.
func (d *Decoder) Reset() {
	d.state = StateNormal
	d.absCol = 0
}

// Consume processes one byte from the host and returns the display
// operations it produces, in application order. Most bytes yield zero
// or one op; rubout yields two.
func (d *Decoder) Consume(b byte) []Op {
	switch d.state {
	case StateNormal:
		return d.consumeNormal(b)
	case StateEscape:
		return d.consumeEscape(b)
	case StateCursorAbsCol:
		d.absCol = b
		d.state = StateCursorAbsRow
		return nil
	case StateCursorAbsRow:
		col := int(d.absCol)
		d.state = StateNormal
		return []Op{{Kind: OpMoveAbsolute, Row: int(b), Col: col}}
	case StateCursorHorz:
		d.state = StateNormal
		a := b & 0x7F
		group := int(a >> 4)
		pos := int(a & 0xF)
		if pos >= 10 {
			return nil
		}
		return []Op{{Kind: OpMoveColumn, Col: group*10 + pos}}
	case StateCursorVert:
		d.state = StateNormal
		a := b & 0x1F
		if a >= 24 {
			return nil
		}
		return []Op{{Kind: OpMoveRow, Row: int(a)}}
	case StateTransparent:
		d.state = StateNormal
		return []Op{transparentRender(b)}
	default:
		// Unreachable; resynchronize rather than wedge.
		d.Reset()
		return nil
	}
}

func (d *Decoder) consumeNormal(b byte) []Op {
	switch b {
	case ctrlESC:
		d.state = StateEscape
		return nil
	case ctrlDLE:
		d.state = StateCursorHorz
		return nil
	case ctrlVT:
		d.state = StateCursorVert
		return nil
	case ctrlBEL:
		return []Op{{Kind: OpBeep}}
	case ctrlBS, ctrlNAK:
		return []Op{{Kind: OpCursorBack}}
	case ctrlLF:
		return []Op{{Kind: OpCursorDown}}
	case ctrlACK:
		return []Op{{Kind: OpCursorForward}}
	case ctrlSOH:
		return []Op{{Kind: OpCursorHome}}
	case ctrlSUB:
		return []Op{{Kind: OpCursorUp}}
	case ctrlFF:
		return []Op{{Kind: OpEraseAll}}
	case ctrlCR:
		return []Op{{Kind: OpCursorLineStart}}
	case ctrlSTX, ctrlEOT:
		// Keyboard lock/unlock for ADDS Consul 580 compatibility.
		// The lock itself is not emulated; the byte is consumed.
		return nil
	case ctrlDEL:
		// Rubout blanks the cell under the cursor and stays put.
		return []Op{render(' '), {Kind: OpCursorBack}}
	case 0x00:
		return []Op{render(glyphMiddleDot)}
	default:
		if b < 0x20 {
			// Unassigned control bytes render as their printable
			// counterpart in reverse video.
			return []Op{renderReverse(rune(b + 64))}
		}
		return []Op{render(rune(b))}
	}
}

func (d *Decoder) consumeEscape(b byte) []Op {
	switch b {
	case escCursorAbsolute:
		d.absCol = 0
		d.state = StateCursorAbsCol
		return nil
	case escEraseToLineEnd:
		d.state = StateNormal
		return []Op{{Kind: OpEraseToLineEnd}}
	case escEraseToScreenEnd:
		d.state = StateNormal
		return []Op{{Kind: OpEraseToScreenEnd}}
	case escTransparentData:
		d.state = StateTransparent
		return nil
	case escTransparentOn, escTransparentOff, escKeyboardLock, escKeyboardUnlock:
		// Reserved commands the emulation accepts without acting on.
		d.state = StateNormal
		return nil
	default:
		// Unrecognized escape; resynchronize on the next byte.
		d.state = StateNormal
		return nil
	}
}

// transparentRender maps a byte consumed in transparent-data mode to
// its literal rendering.
func transparentRender(b byte) Op {
	switch {
	case b == 0x00:
		return render(glyphMiddleDot)
	case b == ctrlDEL:
		return render(glyphDarkShade)
	case b < 0x20:
		return renderReverse(rune(b + 64))
	default:
		return render(rune(b))
	}
}
