package screen

import (
	"github.com/velsom/centterm/internal/term"
)

// Grid dimensions of the emulated terminal.
const (
	Rows = 24
	Cols = 80
)

// Screen is the 80x24 character surface of the emulated terminal. It
// owns the cursor and applies the Centurion cursor edge policy: motion
// past an edge wraps or scrolls, out-of-range position requests are
// dropped, and character rendering auto-advances with a deferred wrap
// at the last column.
//
// Screen is not safe for concurrent use; the session's output pump is
// its sole mutator.
type Screen struct {
	backend    Backend
	autoScroll bool

	row, col int
	// wrapPending is set after rendering in the last column: the cursor
	// stays on column 79 and the wrap (or scroll) happens just before
	// the next character renders.
	wrapPending bool

	cells [Rows][Cols]Cell
}

// New creates a screen on the given backend. The backend must already
// be initialized. autoScroll selects scrolling over wrap-around when
// motion passes the bottom row.
func New(backend Backend, autoScroll bool) *Screen {
	s := &Screen{backend: backend, autoScroll: autoScroll}
	s.backend.Clear()
	s.backend.ShowCursor(0, 0)
	return s
}

// Cursor returns the current cursor position.
func (s *Screen) Cursor() (row, col int) {
	return s.row, s.col
}

// CellAt returns the cell at the given position, or a blank cell when
// the position is out of range.
func (s *Screen) CellAt(row, col int) Cell {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return Cell{}
	}
	return s.cells[row][col]
}

// Apply performs one display operation.
func (s *Screen) Apply(op term.Op) {
	switch op.Kind {
	case term.OpBeep:
		s.backend.Beep()
	case term.OpCursorBack:
		s.moveBack()
	case term.OpCursorDown:
		s.moveDown()
	case term.OpCursorForward:
		s.moveForward()
	case term.OpCursorHome:
		s.moveHome()
	case term.OpCursorUp:
		s.moveUp()
	case term.OpCursorLineStart:
		s.wrapPending = false
		s.col = 0
	case term.OpEraseAll:
		s.EraseAll()
	case term.OpEraseToLineEnd:
		s.eraseToLineEnd()
	case term.OpEraseToScreenEnd:
		s.eraseToScreenEnd()
	case term.OpMoveAbsolute:
		s.MoveCursor(op.Row, op.Col)
	case term.OpMoveColumn:
		s.MoveCursor(s.row, op.Col)
	case term.OpMoveRow:
		s.MoveCursor(op.Row, s.col)
	case term.OpRender:
		s.Put(op.Rune, op.Reverse)
	}
}

// Flush pushes pending changes and the cursor position to the display.
func (s *Screen) Flush() {
	s.backend.ShowCursor(s.col, s.row)
	s.backend.Show()
}

// MoveCursor moves the cursor to row,col. Requests outside the grid
// are silently dropped.
func (s *Screen) MoveCursor(row, col int) {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return
	}
	s.wrapPending = false
	s.row = row
	s.col = col
}

// Put renders r at the cursor and auto-advances. When the last column
// has been rendered the wrap is deferred: the next Put first re-enters
// at column 0 (scrolling at the bottom row in auto-scroll mode) and
// then draws.
func (s *Screen) Put(r rune, reverse bool) {
	if s.wrapPending {
		s.wrapPending = false
		if s.row == Rows-1 {
			if s.autoScroll {
				s.ScrollUp()
			}
			// Without auto-scroll the cursor re-enters at the start of
			// the same row; observed hardware behavior, manual silent.
			s.col = 0
		} else {
			s.row++
			s.col = 0
		}
	}
	s.setCell(s.row, s.col, Cell{Rune: r, Reverse: reverse})
	if s.col == Cols-1 {
		s.wrapPending = true
	} else {
		s.col++
	}
}

// ScrollUp shifts the visible rows up by one, blanking the bottom row.
func (s *Screen) ScrollUp() {
	copy(s.cells[:], s.cells[1:])
	s.cells[Rows-1] = [Cols]Cell{}
	s.repaint()
}

// EraseAll clears the whole grid and homes nothing; the cursor stays.
func (s *Screen) EraseAll() {
	s.cells = [Rows][Cols]Cell{}
	s.backend.Clear()
}

// Beep sounds the audible tone.
func (s *Screen) Beep() {
	s.backend.Beep()
}

// Notice scrolls the display and renders msg in bold on the bottom
// row. Used for the link-fault diagnostic and its exit prompt.
func (s *Screen) Notice(msg string) {
	s.ScrollUp()
	s.wrapPending = false
	s.row = Rows - 1
	s.col = 0
	for _, r := range msg {
		if s.col >= Cols {
			break
		}
		s.setCell(s.row, s.col, Cell{Rune: r, Bold: true})
		s.col++
	}
	if s.col >= Cols {
		s.col = Cols - 1
	}
	s.Flush()
}

func (s *Screen) moveBack() {
	s.wrapPending = false
	switch {
	case s.col == 0 && s.row == 0:
		s.row, s.col = Rows-1, Cols-1
	case s.col == 0:
		s.row--
		s.col = Cols - 1
	default:
		s.col--
	}
}

func (s *Screen) moveDown() {
	s.wrapPending = false
	if s.row == Rows-1 {
		if s.autoScroll {
			s.ScrollUp()
		} else {
			s.row = 0
		}
		return
	}
	s.row++
}

func (s *Screen) moveForward() {
	s.wrapPending = false
	if s.col == Cols-1 {
		if s.row == Rows-1 {
			if s.autoScroll {
				s.ScrollUp()
			}
			// Re-enter at the start of the same row; see Put.
			s.col = 0
		} else {
			s.row++
			s.col = 0
		}
		return
	}
	s.col++
}

func (s *Screen) moveHome() {
	s.wrapPending = false
	if s.autoScroll {
		s.row, s.col = Rows-1, 0 // lower left
	} else {
		s.row, s.col = 0, 0 // upper left
	}
}

func (s *Screen) moveUp() {
	s.wrapPending = false
	if s.row == 0 {
		s.row = Rows - 1
		return
	}
	s.row--
}

func (s *Screen) eraseToLineEnd() {
	for col := s.col; col < Cols; col++ {
		s.setCell(s.row, col, Cell{})
	}
}

func (s *Screen) eraseToScreenEnd() {
	s.eraseToLineEnd()
	for row := s.row + 1; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			s.setCell(row, col, Cell{})
		}
	}
}

func (s *Screen) setCell(row, col int, cell Cell) {
	s.cells[row][col] = cell
	s.backend.SetCell(col, row, cell)
}

// repaint redraws the whole grid on the backend after a scroll.
func (s *Screen) repaint() {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			s.backend.SetCell(col, row, s.cells[row][col])
		}
	}
}
