package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/mailpilot/internal/version"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// generateHelpText builds the shortcut reference from the configured keys
func (a *App) generateHelpText() string {
	var help strings.Builder
	title := colorTag(a.theme.Frame.Title.HighlightColor)

	row := func(key, desc string) {
		fmt.Fprintf(&help, "  %-10s %s\n", tview.Escape(keyLabel(key)), desc)
	}
	section := func(name string) {
		fmt.Fprintf(&help, "\n%s%s[-]\n", title, name)
	}

	fmt.Fprintf(&help, "%smailpilot %s[-]\n", title, version.GetVersion())

	section("Navigation")
	row(a.Keys.Inbox, "Inbox")
	row(a.Keys.Drafts, "Drafts")
	row(a.Keys.Prompts, "Prompt brain")
	row(a.Keys.Back, "Back / close")
	row("enter", "Open selected item")
	row(a.Keys.Help, "Toggle this help")
	row(a.Keys.Quit, "Quit")

	section("Inbox")
	row(a.Keys.Refresh, "Fetch new mail and reload")

	section("Email")
	row(a.Keys.Chat, "Chat about this email")
	row(a.Keys.DraftReply, "Draft a reply (chat text becomes instructions)")
	row("tab", "Switch between email and chat")

	section("Drafts")
	row(a.Keys.Edit, "Edit body (local only)")
	row(a.Keys.Delete, "Delete draft")
	row(a.Keys.OpenEmail, "Open the original email")

	section("Prompt brain")
	row("enter", "Edit template")
	row(a.Keys.Save, "Save template (in editor)")
	row(a.Keys.Reload, "Reload prompts")
	row(a.Keys.Initialize, "Create default prompts (empty list only)")

	return help.String()
}

// showHelp toggles the help overlay
func (a *App) showHelp() {
	if a.Modal() == modalHelp {
		a.closeModal()
		return
	}
	view := tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	view.SetText(a.generateHelpText())
	a.styleBox(view.Box, " Help ")
	view.SetBorder(true)
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if keyMatches(a.Keys.Back, event) || keyMatches(a.Keys.Help, event) || keyMatches(a.Keys.Quit, event) {
			a.closeModal()
			return nil
		}
		return event
	})
	a.showModal(modalHelp, view, 64, 34)
}
