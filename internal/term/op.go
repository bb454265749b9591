// Package term implements the Centurion terminal protocol: the output
// decoder that turns the byte stream from the host into display
// operations, and the input translator that turns key events into the
// byte sequences the terminal transmits.
package term

import "fmt"

// OpKind identifies a display operation produced by the decoder.
type OpKind int

const (
	// OpNone is the zero value; the decoder never emits it.
	OpNone OpKind = iota

	// OpBeep sounds the audible tone.
	OpBeep

	// OpCursorBack moves the cursor one cell left, wrapping from (0,0)
	// to (23,79).
	OpCursorBack

	// OpCursorDown moves the cursor one row down, scrolling or wrapping
	// at the bottom row.
	OpCursorDown

	// OpCursorForward moves the cursor one cell right, wrapping or
	// scrolling past the last column of the last row.
	OpCursorForward

	// OpCursorHome moves the cursor to the home position: lower left in
	// auto-scroll mode, upper left otherwise.
	OpCursorHome

	// OpCursorUp moves the cursor one row up, wrapping from row 0 to
	// row 23.
	OpCursorUp

	// OpCursorLineStart moves the cursor to column 0 of the current row.
	OpCursorLineStart

	// OpEraseAll clears the whole screen.
	OpEraseAll

	// OpEraseToLineEnd clears from the cursor to the end of the line.
	OpEraseToLineEnd

	// OpEraseToScreenEnd clears from the cursor to the end of the screen.
	OpEraseToScreenEnd

	// OpMoveAbsolute moves the cursor to Row,Col. Out-of-range requests
	// are dropped by the screen.
	OpMoveAbsolute

	// OpMoveColumn moves the cursor to Col on the current row.
	OpMoveColumn

	// OpMoveRow moves the cursor to Row on the current column.
	OpMoveRow

	// OpRender draws Rune at the cursor and auto-advances. Reverse
	// selects reverse-video rendering for visualized control bytes.
	OpRender
)

// String returns the operation kind name.
func (k OpKind) String() string {
	switch k {
	case OpNone:
		return "None"
	case OpBeep:
		return "Beep"
	case OpCursorBack:
		return "CursorBack"
	case OpCursorDown:
		return "CursorDown"
	case OpCursorForward:
		return "CursorForward"
	case OpCursorHome:
		return "CursorHome"
	case OpCursorUp:
		return "CursorUp"
	case OpCursorLineStart:
		return "CursorLineStart"
	case OpEraseAll:
		return "EraseAll"
	case OpEraseToLineEnd:
		return "EraseToLineEnd"
	case OpEraseToScreenEnd:
		return "EraseToScreenEnd"
	case OpMoveAbsolute:
		return "MoveAbsolute"
	case OpMoveColumn:
		return "MoveColumn"
	case OpMoveRow:
		return "MoveRow"
	case OpRender:
		return "Render"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is a single display operation. The decoder emits ops; the screen
// applies them, including the cursor edge policy (wrap and scroll).
type Op struct {
	Kind OpKind

	// Row and Col are targets for the cursor movement ops.
	Row, Col int

	// Rune is the character for OpRender.
	Rune rune

	// Reverse requests reverse-video rendering for OpRender.
	Reverse bool
}

// String returns a readable form, e.g. "Render('A')" or "MoveAbsolute(10,5)".
func (o Op) String() string {
	switch o.Kind {
	case OpRender:
		if o.Reverse {
			return fmt.Sprintf("Render(%q,reverse)", o.Rune)
		}
		return fmt.Sprintf("Render(%q)", o.Rune)
	case OpMoveAbsolute:
		return fmt.Sprintf("MoveAbsolute(%d,%d)", o.Row, o.Col)
	case OpMoveColumn:
		return fmt.Sprintf("MoveColumn(%d)", o.Col)
	case OpMoveRow:
		return fmt.Sprintf("MoveRow(%d)", o.Row)
	default:
		return o.Kind.String()
	}
}

// render builds a literal render op.
func render(r rune) Op {
	return Op{Kind: OpRender, Rune: r}
}

// renderReverse builds a reverse-video render op used to visualize
// control bytes as printable glyphs.
func renderReverse(r rune) Op {
	return Op{Kind: OpRender, Rune: r, Reverse: true}
}
