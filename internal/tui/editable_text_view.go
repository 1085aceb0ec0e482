package tui

import (
	"strings"
	"unicode"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const cursorGlyph = "█"

// EditableTextView is a small multi-line editor built on a TextView. It
// proxies the Primitive methods to the TextView and edits through an input
// capture, so tview keeps handling scrolling and focus.
type EditableTextView struct {
	textView *tview.TextView

	// Editing state, lines are kept as runes so the cursor is per character
	lines        [][]rune
	cursorLine   int
	cursorColumn int

	isEditable bool
	saveKey    string
	changeFunc func(string)
	saveFunc   func(string)
	cancelFunc func()

	updating bool
}

// NewEditableTextView creates an empty editor
func NewEditableTextView() *EditableTextView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetScrollable(true)

	e := &EditableTextView{
		textView:   textView,
		lines:      [][]rune{{}},
		isEditable: true,
		saveKey:    "ctrl+s",
	}
	textView.SetInputCapture(e.handleInput)
	e.updateDisplay()
	return e
}

// Proxy Pattern: tview.Primitive is implemented by delegating to textView

// Draw delegates drawing to the underlying TextView
func (e *EditableTextView) Draw(screen tcell.Screen) {
	e.textView.Draw(screen)
}

// GetRect delegates to the underlying TextView
func (e *EditableTextView) GetRect() (int, int, int, int) {
	return e.textView.GetRect()
}

// SetRect delegates to the underlying TextView
func (e *EditableTextView) SetRect(x, y, width, height int) {
	e.textView.SetRect(x, y, width, height)
}

// InputHandler delegates to the TextView, whose capture does the editing
func (e *EditableTextView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return e.textView.InputHandler()
}

// Focus delegates focus to the underlying TextView
func (e *EditableTextView) Focus(delegate func(p tview.Primitive)) {
	delegate(e.textView)
}

// HasFocus checks if the underlying TextView has focus
func (e *EditableTextView) HasFocus() bool {
	return e.textView.HasFocus()
}

// Blur removes focus from the underlying TextView
func (e *EditableTextView) Blur() {
	e.textView.Blur()
}

// GetFocusable delegates to the underlying TextView
func (e *EditableTextView) GetFocusable() tview.Focusable {
	return e.textView.GetFocusable()
}

// MouseHandler delegates to the underlying TextView
func (e *EditableTextView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return e.textView.MouseHandler()
}

// Box exposes the frame for styling
func (e *EditableTextView) Box() *tview.Box {
	return e.textView.Box
}

// SetText replaces the content and moves the cursor to the end
func (e *EditableTextView) SetText(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	e.lines = make([][]rune, len(parts))
	for i, p := range parts {
		e.lines[i] = []rune(p)
	}
	e.cursorLine = len(e.lines) - 1
	e.cursorColumn = len(e.lines[e.cursorLine])
	e.updateDisplay()
}

// GetText returns the current content
func (e *EditableTextView) GetText() string {
	parts := make([]string, len(e.lines))
	for i, l := range e.lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}

// SetChangedFunc sets the callback for text changes
func (e *EditableTextView) SetChangedFunc(changed func(string)) *EditableTextView {
	e.changeFunc = changed
	return e
}

// SetSaveFunc sets the key binding and callback used to submit the text
func (e *EditableTextView) SetSaveFunc(key string, save func(string)) *EditableTextView {
	if strings.TrimSpace(key) != "" {
		e.saveKey = key
	}
	e.saveFunc = save
	return e
}

// SetCancelFunc sets the callback run on Escape
func (e *EditableTextView) SetCancelFunc(cancel func()) *EditableTextView {
	e.cancelFunc = cancel
	return e
}

// SetEditable enables or disables editing
func (e *EditableTextView) SetEditable(editable bool) *EditableTextView {
	e.isEditable = editable
	e.updateDisplay()
	return e
}

// GetCursorPosition returns current cursor line and column
func (e *EditableTextView) GetCursorPosition() (int, int) {
	return e.cursorLine, e.cursorColumn
}

// SetCursorPosition moves the cursor, clamping the column to the line
func (e *EditableTextView) SetCursorPosition(line, column int) {
	if line < 0 || line >= len(e.lines) {
		return
	}
	e.cursorLine = line
	if column < 0 || column > len(e.lines[line]) {
		column = len(e.lines[line])
	}
	e.cursorColumn = column
	e.updateDisplay()
}

func (e *EditableTextView) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape:
		if e.cancelFunc != nil {
			e.cancelFunc()
		}
		return nil
	case keyMatches(e.saveKey, event):
		if e.saveFunc != nil && e.isEditable {
			e.saveFunc(e.GetText())
		}
		return nil
	}

	if !e.isEditable {
		return event
	}

	switch event.Key() {
	case tcell.KeyTab, tcell.KeyBacktab:
		return event
	case tcell.KeyEnter:
		e.insertNewline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.handleBackspace()
	case tcell.KeyDelete:
		e.handleDelete()
	case tcell.KeyUp:
		e.moveCursorUp()
	case tcell.KeyDown:
		e.moveCursorDown()
	case tcell.KeyLeft:
		e.moveCursorLeft()
	case tcell.KeyRight:
		e.moveCursorRight()
	case tcell.KeyHome:
		e.cursorColumn = 0
		e.updateDisplay()
	case tcell.KeyEnd:
		e.cursorColumn = len(e.lines[e.cursorLine])
		e.updateDisplay()
	case tcell.KeyRune:
		if !unicode.IsPrint(event.Rune()) {
			return event
		}
		e.insertCharacter(event.Rune())
	default:
		return event
	}
	// consumed, global shortcuts never see editor keys
	return nil
}

// insertCharacter inserts a character at the current cursor position
func (e *EditableTextView) insertCharacter(ch rune) {
	line := e.lines[e.cursorLine]
	out := make([]rune, 0, len(line)+1)
	out = append(out, line[:e.cursorColumn]...)
	out = append(out, ch)
	out = append(out, line[e.cursorColumn:]...)
	e.lines[e.cursorLine] = out
	e.cursorColumn++
	e.textChanged()
}

// insertNewline splits the line at the cursor
func (e *EditableTextView) insertNewline() {
	line := e.lines[e.cursorLine]
	left := append([]rune(nil), line[:e.cursorColumn]...)
	right := append([]rune(nil), line[e.cursorColumn:]...)

	lines := make([][]rune, 0, len(e.lines)+1)
	lines = append(lines, e.lines[:e.cursorLine]...)
	lines = append(lines, left, right)
	lines = append(lines, e.lines[e.cursorLine+1:]...)
	e.lines = lines

	e.cursorLine++
	e.cursorColumn = 0
	e.textChanged()
}

// handleBackspace removes the character before the cursor, joining lines at
// column zero
func (e *EditableTextView) handleBackspace() {
	switch {
	case e.cursorColumn > 0:
		line := e.lines[e.cursorLine]
		e.lines[e.cursorLine] = append(line[:e.cursorColumn-1:e.cursorColumn-1], line[e.cursorColumn:]...)
		e.cursorColumn--
	case e.cursorLine > 0:
		prev := e.lines[e.cursorLine-1]
		e.cursorColumn = len(prev)
		e.lines[e.cursorLine-1] = append(prev[:len(prev):len(prev)], e.lines[e.cursorLine]...)
		e.lines = append(e.lines[:e.cursorLine], e.lines[e.cursorLine+1:]...)
		e.cursorLine--
	default:
		return
	}
	e.textChanged()
}

// handleDelete removes the character under the cursor, joining lines at the end
func (e *EditableTextView) handleDelete() {
	line := e.lines[e.cursorLine]
	switch {
	case e.cursorColumn < len(line):
		e.lines[e.cursorLine] = append(line[:e.cursorColumn:e.cursorColumn], line[e.cursorColumn+1:]...)
	case e.cursorLine < len(e.lines)-1:
		e.lines[e.cursorLine] = append(line[:len(line):len(line)], e.lines[e.cursorLine+1]...)
		e.lines = append(e.lines[:e.cursorLine+1], e.lines[e.cursorLine+2:]...)
	default:
		return
	}
	e.textChanged()
}

func (e *EditableTextView) moveCursorUp() {
	if e.cursorLine > 0 {
		e.cursorLine--
		e.clampColumn()
		e.updateDisplay()
	}
}

func (e *EditableTextView) moveCursorDown() {
	if e.cursorLine < len(e.lines)-1 {
		e.cursorLine++
		e.clampColumn()
		e.updateDisplay()
	}
}

func (e *EditableTextView) moveCursorLeft() {
	switch {
	case e.cursorColumn > 0:
		e.cursorColumn--
	case e.cursorLine > 0:
		e.cursorLine--
		e.cursorColumn = len(e.lines[e.cursorLine])
	default:
		return
	}
	e.updateDisplay()
}

func (e *EditableTextView) moveCursorRight() {
	switch {
	case e.cursorColumn < len(e.lines[e.cursorLine]):
		e.cursorColumn++
	case e.cursorLine < len(e.lines)-1:
		e.cursorLine++
		e.cursorColumn = 0
	default:
		return
	}
	e.updateDisplay()
}

func (e *EditableTextView) clampColumn() {
	if n := len(e.lines[e.cursorLine]); e.cursorColumn > n {
		e.cursorColumn = n
	}
}

// textChanged redraws and notifies the change callback
func (e *EditableTextView) textChanged() {
	e.updateDisplay()
	if e.changeFunc != nil && !e.updating {
		e.changeFunc(e.GetText())
	}
}

// updateDisplay renders the lines with a block cursor
func (e *EditableTextView) updateDisplay() {
	if e.updating {
		return
	}
	e.updating = true
	defer func() { e.updating = false }()

	display := make([]string, len(e.lines))
	for i, line := range e.lines {
		if i != e.cursorLine || !e.isEditable {
			display[i] = tview.Escape(string(line))
			continue
		}
		left := tview.Escape(string(line[:e.cursorColumn]))
		if e.cursorColumn < len(line) {
			// cursor replaces the glyph it sits on
			display[i] = left + cursorGlyph + tview.Escape(string(line[e.cursorColumn+1:]))
		} else {
			display[i] = left + cursorGlyph
		}
	}
	e.textView.SetText(strings.Join(display, "\n"))
}
