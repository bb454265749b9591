package screen

import (
	"testing"

	"github.com/velsom/centterm/internal/term"
)

func newTestScreen(t *testing.T, autoScroll bool) (*Screen, *NullBackend) {
	t.Helper()
	backend := NewNullBackend(Cols, Rows)
	if err := backend.Init(); err != nil {
		t.Fatalf("backend init: %v", err)
	}
	return New(backend, autoScroll), backend
}

func feed(s *Screen, text string) {
	for _, r := range text {
		s.Put(r, false)
	}
}

func TestPutAdvancesCursor(t *testing.T) {
	s, _ := newTestScreen(t, true)
	feed(s, "HI")
	if row, col := s.Cursor(); row != 0 || col != 2 {
		t.Errorf("cursor = (%d,%d), want (0,2)", row, col)
	}
	if got := s.CellAt(0, 0).Rune; got != 'H' {
		t.Errorf("cell(0,0) = %q, want 'H'", got)
	}
	if got := s.CellAt(0, 1).Rune; got != 'I' {
		t.Errorf("cell(0,1) = %q, want 'I'", got)
	}
}

func TestPutReverseVideo(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.Put('G', true)
	cell := s.CellAt(0, 0)
	if cell.Rune != 'G' || !cell.Reverse {
		t.Errorf("cell = %+v, want reverse 'G'", cell)
	}
}

func TestPutDeferredWrapAtLineEnd(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(5, 79)
	s.Put('X', false)

	// The cursor holds at the last column until the next character.
	if row, col := s.Cursor(); row != 5 || col != 79 {
		t.Errorf("cursor = (%d,%d), want (5,79)", row, col)
	}
	if got := s.CellAt(5, 79).Rune; got != 'X' {
		t.Errorf("cell(5,79) = %q, want 'X'", got)
	}

	s.Put('Y', false)
	if row, col := s.Cursor(); row != 6 || col != 1 {
		t.Errorf("cursor = (%d,%d), want (6,1)", row, col)
	}
	if got := s.CellAt(6, 0).Rune; got != 'Y' {
		t.Errorf("cell(6,0) = %q, want 'Y'", got)
	}
}

func TestPutScrollsAtBottomRight(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(22, 0)
	s.Put('M', false) // marker that should move up one row
	s.MoveCursor(23, 79)
	s.Put('X', false) // fills the last cell, wrap now pending
	s.Put('Y', false) // scrolls, then renders at (23,0)

	if row, col := s.Cursor(); row != 23 || col != 1 {
		t.Errorf("cursor = (%d,%d), want (23,1)", row, col)
	}
	if got := s.CellAt(23, 0).Rune; got != 'Y' {
		t.Errorf("cell(23,0) = %q, want 'Y'", got)
	}
	if got := s.CellAt(21, 0).Rune; got != 'M' {
		t.Errorf("cell(21,0) = %q, want scrolled marker 'M'", got)
	}
	if got := s.CellAt(22, 79).Rune; got != 'X' {
		t.Errorf("cell(22,79) = %q, want scrolled 'X'", got)
	}
}

func TestPutWrapsToRowStartWithoutAutoScroll(t *testing.T) {
	s, _ := newTestScreen(t, false)
	s.MoveCursor(23, 79)
	s.Put('X', false)
	s.Put('Y', false)

	if row, col := s.Cursor(); row != 23 || col != 1 {
		t.Errorf("cursor = (%d,%d), want (23,1)", row, col)
	}
	if got := s.CellAt(23, 0).Rune; got != 'Y' {
		t.Errorf("cell(23,0) = %q, want 'Y'", got)
	}
	// Nothing scrolled.
	if got := s.CellAt(22, 79).Rune; got != 0 {
		t.Errorf("cell(22,79) = %q, want blank", got)
	}
}

func TestMoveCursorBounds(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(10, 20)

	// Out-of-range requests are dropped, not clamped.
	s.MoveCursor(24, 0)
	if row, col := s.Cursor(); row != 10 || col != 20 {
		t.Errorf("cursor after MoveCursor(24,0) = (%d,%d), want (10,20)", row, col)
	}
	s.MoveCursor(0, 80)
	if row, col := s.Cursor(); row != 10 || col != 20 {
		t.Errorf("cursor after MoveCursor(0,80) = (%d,%d), want (10,20)", row, col)
	}
	s.MoveCursor(23, 79)
	if row, col := s.Cursor(); row != 23 || col != 79 {
		t.Errorf("cursor after MoveCursor(23,79) = (%d,%d), want (23,79)", row, col)
	}
}

func TestCursorBackWrapsFromOrigin(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.Apply(term.Op{Kind: term.OpCursorBack})
	if row, col := s.Cursor(); row != 23 || col != 79 {
		t.Errorf("cursor = (%d,%d), want (23,79)", row, col)
	}
}

func TestCursorBackWrapsToPreviousRow(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(5, 0)
	s.Apply(term.Op{Kind: term.OpCursorBack})
	if row, col := s.Cursor(); row != 4 || col != 79 {
		t.Errorf("cursor = (%d,%d), want (4,79)", row, col)
	}
}

func TestCursorDownAtBottom(t *testing.T) {
	// Auto-scroll on: the display scrolls, cursor keeps its column.
	s, _ := newTestScreen(t, true)
	s.MoveCursor(0, 3)
	s.Put('A', false)
	s.MoveCursor(23, 7)
	s.Apply(term.Op{Kind: term.OpCursorDown})
	if row, col := s.Cursor(); row != 23 || col != 7 {
		t.Errorf("cursor = (%d,%d), want (23,7)", row, col)
	}
	if got := s.CellAt(0, 3).Rune; got != 0 {
		t.Errorf("cell(0,3) = %q, want scrolled away", got)
	}

	// Auto-scroll off: wrap to the top row.
	s, _ = newTestScreen(t, false)
	s.MoveCursor(23, 7)
	s.Apply(term.Op{Kind: term.OpCursorDown})
	if row, col := s.Cursor(); row != 0 || col != 7 {
		t.Errorf("cursor = (%d,%d), want (0,7)", row, col)
	}
}

func TestCursorUpWrapsFromTop(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(0, 12)
	s.Apply(term.Op{Kind: term.OpCursorUp})
	if row, col := s.Cursor(); row != 23 || col != 12 {
		t.Errorf("cursor = (%d,%d), want (23,12)", row, col)
	}
}

func TestCursorForwardAdvancesRows(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(3, 79)
	s.Apply(term.Op{Kind: term.OpCursorForward})
	if row, col := s.Cursor(); row != 4 || col != 0 {
		t.Errorf("cursor = (%d,%d), want (4,0)", row, col)
	}
}

func TestCursorHomeDependsOnAutoScroll(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(10, 10)
	s.Apply(term.Op{Kind: term.OpCursorHome})
	if row, col := s.Cursor(); row != 23 || col != 0 {
		t.Errorf("auto-scroll home = (%d,%d), want (23,0)", row, col)
	}

	s, _ = newTestScreen(t, false)
	s.MoveCursor(10, 10)
	s.Apply(term.Op{Kind: term.OpCursorHome})
	if row, col := s.Cursor(); row != 0 || col != 0 {
		t.Errorf("home = (%d,%d), want (0,0)", row, col)
	}
}

func TestEraseAll(t *testing.T) {
	s, _ := newTestScreen(t, true)
	feed(s, "ERASE ME")
	s.Apply(term.Op{Kind: term.OpEraseAll})
	for col := 0; col < 8; col++ {
		if got := s.CellAt(0, col).Rune; got != 0 {
			t.Errorf("cell(0,%d) = %q, want blank", col, got)
		}
	}
}

func TestEraseToLineEnd(t *testing.T) {
	s, _ := newTestScreen(t, true)
	feed(s, "KEEP|DROP")
	s.MoveCursor(0, 5)
	s.Apply(term.Op{Kind: term.OpEraseToLineEnd})
	if got := s.CellAt(0, 4).Rune; got != '|' {
		t.Errorf("cell(0,4) = %q, want '|'", got)
	}
	for col := 5; col < 9; col++ {
		if got := s.CellAt(0, col).Rune; got != 0 {
			t.Errorf("cell(0,%d) = %q, want blank", col, got)
		}
	}
}

func TestEraseToScreenEnd(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(2, 0)
	feed(s, "ROW2")
	s.MoveCursor(3, 0)
	feed(s, "ROW3")
	s.MoveCursor(2, 2)
	s.Apply(term.Op{Kind: term.OpEraseToScreenEnd})

	if got := s.CellAt(2, 1).Rune; got != 'O' {
		t.Errorf("cell(2,1) = %q, want 'O'", got)
	}
	if got := s.CellAt(2, 2).Rune; got != 0 {
		t.Errorf("cell(2,2) = %q, want blank", got)
	}
	if got := s.CellAt(3, 0).Rune; got != 0 {
		t.Errorf("cell(3,0) = %q, want blank", got)
	}
}

func TestBeep(t *testing.T) {
	s, backend := newTestScreen(t, true)
	s.Apply(term.Op{Kind: term.OpBeep})
	if backend.Beeps() != 1 {
		t.Errorf("beeps = %d, want 1", backend.Beeps())
	}
}

func TestNotice(t *testing.T) {
	s, _ := newTestScreen(t, true)
	s.MoveCursor(23, 0)
	feed(s, "OLD")
	s.Notice("link down")

	if got := s.CellAt(22, 0).Rune; got != 'O' {
		t.Errorf("cell(22,0) = %q, want scrolled 'O'", got)
	}
	cell := s.CellAt(23, 0)
	if cell.Rune != 'l' || !cell.Bold {
		t.Errorf("cell(23,0) = %+v, want bold 'l'", cell)
	}
}

func TestDecoderDrivesScreen(t *testing.T) {
	// End-to-end over the byte protocol: home, text, absolute move.
	s, _ := newTestScreen(t, false)
	d := term.NewDecoder()
	input := []byte{0x01, 'A', 'B', 0x1B, 'Y', 4, 2, 'C'}
	for _, b := range input {
		for _, op := range d.Consume(b) {
			s.Apply(op)
		}
	}
	if got := s.CellAt(0, 0).Rune; got != 'A' {
		t.Errorf("cell(0,0) = %q, want 'A'", got)
	}
	if got := s.CellAt(2, 4).Rune; got != 'C' {
		t.Errorf("cell(2,4) = %q, want 'C'", got)
	}
	if row, col := s.Cursor(); row != 2 || col != 5 {
		t.Errorf("cursor = (%d,%d), want (2,5)", row, col)
	}
}
