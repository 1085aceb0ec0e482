package tui

import (
	"strings"
	"unicode"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"go.uber.org/zap"
)

var namedKeys = map[string]tcell.Key{
	"esc":       tcell.KeyEscape,
	"escape":    tcell.KeyEscape,
	"enter":     tcell.KeyEnter,
	"tab":       tcell.KeyTab,
	"backtab":   tcell.KeyBacktab,
	"backspace": tcell.KeyBackspace2,
	"delete":    tcell.KeyDelete,
	"del":       tcell.KeyDelete,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
	"f1":        tcell.KeyF1,
	"f2":        tcell.KeyF2,
	"f3":        tcell.KeyF3,
	"f4":        tcell.KeyF4,
	"f5":        tcell.KeyF5,
	"f6":        tcell.KeyF6,
	"f7":        tcell.KeyF7,
	"f8":        tcell.KeyF8,
	"f9":        tcell.KeyF9,
	"f10":       tcell.KeyF10,
	"f11":       tcell.KeyF11,
	"f12":       tcell.KeyF12,
}

// keyMatches reports whether event is the configured binding. A binding is
// a single character ("R"), a named key ("esc", "f1") or a ctrl chord
// ("ctrl+s"). Single characters are case sensitive.
func keyMatches(binding string, event *tcell.EventKey) bool {
	b := strings.TrimSpace(binding)
	if b == "" || event == nil {
		return false
	}

	lower := strings.ToLower(b)
	if rest, ok := strings.CutPrefix(lower, "ctrl+"); ok {
		if len(rest) != 1 || rest[0] < 'a' || rest[0] > 'z' {
			return false
		}
		return event.Key() == tcell.KeyCtrlA+tcell.Key(rest[0]-'a')
	}

	if k, ok := namedKeys[lower]; ok && len([]rune(b)) > 1 {
		return event.Key() == k
	}

	r := []rune(b)
	if len(r) != 1 {
		return false
	}
	return event.Key() == tcell.KeyRune && event.Rune() == r[0]
}

// keyLabel renders a binding for help and hints
func keyLabel(binding string) string {
	b := strings.TrimSpace(binding)
	if b == "" {
		return "-"
	}
	if len([]rune(b)) == 1 {
		return b
	}
	parts := strings.Split(b, "+")
	for i, p := range parts {
		r := []rune(strings.ToLower(p))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		parts[i] = string(r)
	}
	return strings.Join(parts, "+")
}

// bindKeys installs the global shortcuts. Overlays and text inputs receive
// every key untouched; the rest is offered to the visible page first.
func (a *App) bindKeys() {
	a.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.Modal() != "" {
			return event
		}
		if _, ok := a.GetFocus().(*tview.InputField); ok {
			return event
		}

		p := a.pages[a.CurrentPage()]
		if p != nil {
			if event = p.handleKey(event); event == nil {
				return nil
			}
		}
		return a.handleGlobalKey(event)
	})
}

// handleGlobalKey runs navigation and application shortcuts
func (a *App) handleGlobalKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case keyMatches(a.Keys.Quit, event):
		a.logger.Debug("shortcut", zap.String("action", "quit"))
		a.Application.Stop()
		return nil
	case keyMatches(a.Keys.Help, event):
		a.showHelp()
		return nil
	case keyMatches(a.Keys.Inbox, event):
		a.navigate(pageInbox)
		return nil
	case keyMatches(a.Keys.Drafts, event):
		a.navigate(pageDrafts)
		return nil
	case keyMatches(a.Keys.Prompts, event):
		a.navigate(pagePrompts)
		return nil
	case keyMatches(a.Keys.Back, event):
		a.back()
		return nil
	}
	return event
}
