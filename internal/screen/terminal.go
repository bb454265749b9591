package screen

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/velsom/centterm/internal/key"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Init()
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := cell.Rune
	if r == 0 {
		r = ' '
	}
	t.screen.SetContent(x, y, r, nil, convertStyle(cell))
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.screen.Beep() // best-effort; terminal may not support beep
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	return convertEvent(ev)
}

func (t *Terminal) PostEvent(ev Event) {
	switch ev.Type {
	case EventInterrupt:
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
	case EventKey:
		tcellEv := tcell.NewEventKey(tcell.KeyRune, ev.Key.Rune, tcell.ModNone)
		_ = t.screen.PostEvent(tcellEv) // best-effort; queue may be full
	}
}

// convertStyle converts a Cell's attributes to a tcell.Style.
func convertStyle(cell Cell) tcell.Style {
	style := tcell.StyleDefault
	if cell.Reverse {
		style = style.Reverse(true)
	}
	if cell.Bold {
		style = style.Bold(true)
	}
	return style
}

// convertEvent converts tcell events to backend events.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e)}

	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	case nil:
		// PollEvent returns nil once the screen is finalized.
		return Event{Type: EventQuit}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey converts a tcell key event to the emulator's key model.
// Keys without a mapping come back as KeyNone and are dropped by the
// input translator.
func convertKey(e *tcell.EventKey) key.Event {
	switch e.Key() {
	case tcell.KeyRune:
		return key.NewRuneEvent(e.Rune())
	case tcell.KeyEnter:
		return key.NewRuneEvent('\n')
	case tcell.KeyTab:
		return key.NewRuneEvent('\t')
	case tcell.KeyEscape:
		return key.NewRuneEvent(0x1B)
	case tcell.KeyUp:
		return key.NewSpecialEvent(key.KeyUp)
	case tcell.KeyDown:
		return key.NewSpecialEvent(key.KeyDown)
	case tcell.KeyLeft:
		return key.NewSpecialEvent(key.KeyLeft)
	case tcell.KeyRight:
		return key.NewSpecialEvent(key.KeyRight)
	case tcell.KeyHome:
		return key.NewSpecialEvent(key.KeyHome)
	case tcell.KeyClear:
		return key.NewSpecialEvent(key.KeyClear)
	case tcell.KeyDelete:
		return key.NewSpecialEvent(key.KeyDelete)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewSpecialEvent(key.KeyBackspace)
	case tcell.KeyF10:
		return key.NewSpecialEvent(key.KeyExit)
	default:
		// Control keys arrive with their byte value as the key code;
		// pass them through so Ctrl-letter reaches the host.
		if e.Key() > 0 && e.Key() < 0x20 {
			return key.NewRuneEvent(rune(e.Key()))
		}
		return key.NewSpecialEvent(key.KeyNone)
	}
}
