package tui

import (
	"context"
	"fmt"

	"github.com/ajramos/mailpilot/internal/models"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// inboxPage lists emails with a one-line preview of the selected row
type inboxPage struct {
	app     *App
	screen  *screens.Inbox
	root    *tview.Flex
	list    *tview.Table
	preview *tview.TextView
	emails  []models.Email
}

func newInboxPage(app *App, screen *screens.Inbox) *inboxPage {
	p := &inboxPage{app: app, screen: screen}

	p.list = tview.NewTable().SetSelectable(true, false)
	app.styleTable(p.list)
	p.list.SetSelectionChangedFunc(func(row, _ int) { p.updatePreview(row) })
	p.list.SetSelectedFunc(func(row, _ int) { p.openRow(row) })

	p.preview = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	p.preview.SetBackgroundColor(app.theme.Body.BgColor.Color())
	p.preview.SetTextColor(app.theme.Table.MutedColor.Color())

	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.list, 0, 1, true).
		AddItem(p.preview, 1, 0, false)
	app.styleBox(p.root.Box, " Inbox ")

	screen.SetOnChange(func() { app.redraw(p) })
	return p
}

func (p *inboxPage) Name() string          { return pageInbox }
func (p *inboxPage) Root() tview.Primitive { return p.root }

func (p *inboxPage) activate() {
	p.app.async(func(ctx context.Context) {
		// the screen logs and keeps the failure for refresh()
		_ = p.screen.Activate(ctx)
	})
}

func (p *inboxPage) deactivate() {
	p.screen.Deactivate()
}

// refreshInbox runs ingestion then reload. A failed refresh keeps the list
// and is only logged by the screen; the status bar falls back to its baseline.
func (p *inboxPage) refreshInbox() {
	eh := p.app.errorHandler
	eh.ShowProgress(p.app.ctx, "Fetching new mail...")
	p.app.async(func(ctx context.Context) {
		err := p.screen.Refresh(ctx)
		eh.ClearProgress()
		if err == nil {
			eh.ShowSuccess(ctx, fmt.Sprintf("Inbox refreshed (%d emails)", len(p.screen.Emails())))
		}
	})
}

func (p *inboxPage) refresh() {
	width := p.app.screenWidth() - 2
	p.list.Clear()
	p.emails = nil

	title := " Inbox "
	switch p.screen.Phase() {
	case screens.PhaseIdle, screens.PhaseLoading:
		p.setMessage("Loading emails...", p.app.theme.Table.MutedColor.Color())
	case screens.PhaseFailed:
		p.setMessage(fmt.Sprintf("Failed to load emails: %v", p.screen.Err()), p.app.theme.Status.ErrorColor.Color())
	case screens.PhaseReady:
		p.emails = p.screen.Emails()
		title = fmt.Sprintf(" Inbox (%d) ", len(p.emails))
		if len(p.emails) == 0 {
			p.setMessage(fmt.Sprintf("No emails. Press %s to fetch new mail.", keyLabel(p.app.Keys.Refresh)),
				p.app.theme.Table.MutedColor.Color())
		}
		for i, e := range p.emails {
			text, color := p.app.emailRenderer.FormatEmailList(e, width)
			p.list.SetCell(i, 0, tview.NewTableCell(text).
				SetTextColor(color).
				SetExpansion(1).
				SetReference(e.ID))
		}
	}
	if p.screen.Refreshing() {
		title += "(refreshing) "
	}
	p.root.SetTitle(title)

	row, _ := p.list.GetSelection()
	if len(p.emails) > 0 && (row < 0 || row >= len(p.emails)) {
		row = 0
	}
	p.list.Select(row, 0)
	p.updatePreview(row)
}

func (p *inboxPage) setMessage(msg string, color tcell.Color) {
	p.list.SetCell(0, 0, tview.NewTableCell(tview.Escape(msg)).
		SetTextColor(color).
		SetSelectable(false).
		SetExpansion(1))
}

func (p *inboxPage) updatePreview(row int) {
	if row < 0 || row >= len(p.emails) {
		p.preview.SetText("")
		return
	}
	p.preview.SetText(tview.Escape(p.app.emailRenderer.FormatPreview(p.emails[row], p.app.screenWidth()-2)))
}

func (p *inboxPage) openRow(row int) {
	if row < 0 || row >= len(p.emails) {
		return
	}
	p.app.openEmail(p.emails[row].ID)
}

func (p *inboxPage) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if keyMatches(p.app.Keys.Refresh, event) {
		p.refreshInbox()
		return nil
	}
	return event
}

func (p *inboxPage) hints() string {
	return fmt.Sprintf("enter open | %s refresh", keyLabel(p.app.Keys.Refresh))
}
