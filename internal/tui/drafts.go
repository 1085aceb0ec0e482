package tui

import (
	"context"
	"fmt"

	"github.com/ajramos/mailpilot/internal/models"
	"github.com/ajramos/mailpilot/internal/render"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// draftsPage lists generated replies with the selected body below
type draftsPage struct {
	app    *App
	screen *screens.Drafts
	root   *tview.Flex
	list   *tview.Table
	body   *tview.TextView
	drafts []models.Draft
}

func newDraftsPage(app *App, screen *screens.Drafts) *draftsPage {
	p := &draftsPage{app: app, screen: screen}

	p.list = tview.NewTable().SetSelectable(true, false)
	app.styleTable(p.list)
	p.list.SetSelectionChangedFunc(func(row, _ int) { p.updateBody(row) })
	p.list.SetSelectedFunc(func(row, _ int) { p.editRow(row) })

	p.body = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	app.styleBox(p.body.Box, " Draft ")

	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.list, 0, 1, true).
		AddItem(p.body, 0, 2, false)
	app.styleBox(p.root.Box, " Drafts ")

	screen.SetOnChange(func() { app.redraw(p) })
	return p
}

func (p *draftsPage) Name() string          { return pageDrafts }
func (p *draftsPage) Root() tview.Primitive { return p.root }

func (p *draftsPage) activate() {
	p.app.async(func(ctx context.Context) {
		_ = p.screen.Activate(ctx)
	})
}

func (p *draftsPage) deactivate() {
	p.screen.Deactivate()
}

func (p *draftsPage) refresh() {
	width := p.app.screenWidth() - 2
	p.list.Clear()
	p.drafts = nil

	title := " Drafts "
	switch p.screen.Phase() {
	case screens.PhaseIdle, screens.PhaseLoading:
		p.setMessage("Loading drafts...", p.app.theme.Table.MutedColor.Color())
	case screens.PhaseFailed:
		p.setMessage(fmt.Sprintf("Failed to load drafts: %v", p.screen.Err()), p.app.theme.Status.ErrorColor.Color())
	case screens.PhaseReady:
		p.drafts = p.screen.Drafts()
		title = fmt.Sprintf(" Drafts (%d) ", len(p.drafts))
		if len(p.drafts) == 0 {
			p.setMessage("No drafts yet. Open an email and ask the assistant for a reply.", p.app.theme.Table.MutedColor.Color())
		}
		for i, d := range p.drafts {
			p.list.SetCell(i, 0, tview.NewTableCell(p.app.emailRenderer.FormatDraftList(d, width)).
				SetTextColor(p.app.theme.Table.FgColor.Color()).
				SetExpansion(1).
				SetReference(d.ID))
		}
	}
	p.root.SetTitle(title)

	row, _ := p.list.GetSelection()
	if row >= len(p.drafts) {
		row = len(p.drafts) - 1
	}
	if row < 0 {
		row = 0
	}
	p.list.Select(row, 0)
	p.updateBody(row)
}

func (p *draftsPage) setMessage(msg string, color tcell.Color) {
	p.list.SetCell(0, 0, tview.NewTableCell(tview.Escape(msg)).
		SetTextColor(color).
		SetSelectable(false).
		SetExpansion(1))
}

func (p *draftsPage) updateBody(row int) {
	if row < 0 || row >= len(p.drafts) {
		p.body.SetText("")
		p.body.SetTitle(" Draft ")
		return
	}
	d := p.drafts[row]
	p.body.SetTitle(" " + tview.Escape(orNoSubject(d.Subject)) + " ")
	p.body.SetText(tview.Escape(render.WrapTextPreserving(d.Body, p.app.screenWidth()-4)))
	p.body.ScrollToBeginning()
}

func (p *draftsPage) selected() (models.Draft, bool) {
	row, _ := p.list.GetSelection()
	if row < 0 || row >= len(p.drafts) {
		return models.Draft{}, false
	}
	return p.drafts[row], true
}

// confirmDelete is the screens.ConfirmFunc: a y/n overlay
func (p *draftsPage) confirmDelete(d models.Draft, proceed func()) {
	view := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	view.SetText(fmt.Sprintf("\nDelete draft %q?\n\n[::b]y[::-] delete   [::b]n[::-] cancel",
		tview.Escape(orNoSubject(d.Subject))))
	p.app.styleBox(view.Box, " Confirm ")
	view.SetBorder(true)
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyRune && (event.Rune() == 'y' || event.Rune() == 'Y'):
			p.app.closeModal()
			proceed()
			p.app.errorHandler.ShowSuccess(p.app.ctx, "Draft deleted")
		case event.Key() == tcell.KeyEscape,
			event.Key() == tcell.KeyRune && (event.Rune() == 'n' || event.Rune() == 'N'):
			p.app.closeModal()
		}
		return nil
	})
	p.app.showModal(modalConfirm, view, 60, 7)
}

func (p *draftsPage) deleteSelected() {
	d, ok := p.selected()
	if !ok {
		return
	}
	if err := p.screen.Delete(p.app.ctx, d.ID, p.confirmDelete); err != nil {
		p.app.errorHandler.HandleError(p.app.ctx, err, "Delete failed")
	}
}

func (p *draftsPage) editRow(row int) {
	if row < 0 || row >= len(p.drafts) {
		return
	}
	d := p.drafts[row]

	editor := NewEditableTextView()
	editor.SetText(d.Body)
	p.app.styleBox(editor.Box(), fmt.Sprintf(" Edit draft (%s save, Esc cancel) ", keyLabel(p.app.Keys.Save)))
	editor.Box().SetBorder(true)
	editor.SetSaveFunc(p.app.Keys.Save, func(body string) {
		p.app.closeModal()
		if err := p.screen.Edit(d.ID, body); err != nil {
			p.app.errorHandler.HandleError(p.app.ctx, err, "Edit failed")
			return
		}
		p.app.errorHandler.ShowWarning(p.app.ctx, "Draft updated locally; the change is not saved to the server")
	})
	editor.SetCancelFunc(p.app.closeModal)
	p.app.showModal(modalEditor, editor, p.app.screenWidth()-8, 20)
}

func (p *draftsPage) openSourceEmail() {
	d, ok := p.selected()
	if !ok || d.EmailID == "" {
		return
	}
	p.app.openEmail(d.EmailID)
}

func (p *draftsPage) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case keyMatches(p.app.Keys.Delete, event):
		p.deleteSelected()
		return nil
	case keyMatches(p.app.Keys.Edit, event):
		row, _ := p.list.GetSelection()
		p.editRow(row)
		return nil
	case keyMatches(p.app.Keys.OpenEmail, event):
		p.openSourceEmail()
		return nil
	}
	return event
}

func (p *draftsPage) hints() string {
	return fmt.Sprintf("%s edit | %s delete | %s open email",
		keyLabel(p.app.Keys.Edit), keyLabel(p.app.Keys.Delete), keyLabel(p.app.Keys.OpenEmail))
}
