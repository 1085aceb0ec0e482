package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajramos/mailpilot/internal/models"
	"github.com/ajramos/mailpilot/internal/render"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// promptsPage is the prompt brain: list on top, template of the selection below
type promptsPage struct {
	app      *App
	screen   *screens.Prompts
	root     *tview.Flex
	list     *tview.Table
	template *tview.TextView
	prompts  []models.Prompt
}

func newPromptsPage(app *App, screen *screens.Prompts) *promptsPage {
	p := &promptsPage{app: app, screen: screen}

	p.list = tview.NewTable().SetSelectable(true, false)
	app.styleTable(p.list)
	p.list.SetSelectionChangedFunc(func(row, _ int) { p.updateTemplate(row) })
	p.list.SetSelectedFunc(func(row, _ int) { p.editRow(row) })

	p.template = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	app.styleBox(p.template.Box, " Template ")

	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.list, 0, 1, true).
		AddItem(p.template, 0, 1, false)
	app.styleBox(p.root.Box, " Prompt Brain ")

	screen.SetOnChange(func() { app.redraw(p) })
	return p
}

func (p *promptsPage) Name() string          { return pagePrompts }
func (p *promptsPage) Root() tview.Primitive { return p.root }

func (p *promptsPage) activate() {
	p.app.async(func(ctx context.Context) {
		_ = p.screen.Activate(ctx)
	})
}

func (p *promptsPage) deactivate() {
	p.screen.Deactivate()
}

func (p *promptsPage) refresh() {
	width := p.app.screenWidth() - 14
	p.list.Clear()
	p.prompts = nil

	title := " Prompt Brain "
	switch {
	case p.screen.Seeding():
		p.setMessage("Creating default prompts...", p.app.theme.Table.MutedColor.Color())
	case p.screen.Phase() == screens.PhaseIdle, p.screen.Phase() == screens.PhaseLoading:
		p.setMessage("Loading prompts...", p.app.theme.Table.MutedColor.Color())
	case p.screen.Phase() == screens.PhaseFailed:
		p.setMessage(fmt.Sprintf("Failed to load prompts: %v", p.screen.Err()), p.app.theme.Status.ErrorColor.Color())
	default:
		p.prompts = p.screen.Prompts()
		title = fmt.Sprintf(" Prompt Brain (%d) ", len(p.prompts))
		if len(p.prompts) == 0 {
			p.setMessage(fmt.Sprintf("No prompts found. Press %s to create the default prompts.",
				keyLabel(p.app.Keys.Initialize)), p.app.theme.Table.MutedColor.Color())
		}
		for i, pr := range p.prompts {
			text := p.app.emailRenderer.FormatPromptList(pr, width)
			if p.screen.Saving(pr.ID) {
				text += " " + colorTag(p.app.theme.Status.WarningColor) + "saving...[-]"
			}
			p.list.SetCell(i, 0, tview.NewTableCell(text).
				SetTextColor(p.app.theme.Table.FgColor.Color()).
				SetExpansion(1).
				SetReference(pr.ID))
		}
	}
	p.root.SetTitle(title)

	row, _ := p.list.GetSelection()
	if row >= len(p.prompts) {
		row = len(p.prompts) - 1
	}
	if row < 0 {
		row = 0
	}
	p.list.Select(row, 0)
	p.updateTemplate(row)
}

func (p *promptsPage) setMessage(msg string, color tcell.Color) {
	p.list.SetCell(0, 0, tview.NewTableCell(tview.Escape(msg)).
		SetTextColor(color).
		SetSelectable(false).
		SetExpansion(1))
}

func (p *promptsPage) updateTemplate(row int) {
	if row < 0 || row >= len(p.prompts) {
		p.template.SetText("")
		p.template.SetTitle(" Template ")
		return
	}
	pr := p.prompts[row]
	p.template.SetTitle(fmt.Sprintf(" %s %s ", tview.Escape(pr.Name), tview.Escape("["+string(pr.Type)+"]")))
	p.template.SetText(tview.Escape(render.WrapTextPreserving(pr.Template, p.app.screenWidth()-4)))
}

func (p *promptsPage) editRow(row int) {
	if row < 0 || row >= len(p.prompts) {
		return
	}
	pr := p.prompts[row]

	editor := NewEditableTextView()
	editor.SetText(pr.Template)
	p.app.styleBox(editor.Box(), fmt.Sprintf(" %s (%s save, Esc cancel) ", tview.Escape(pr.Name), keyLabel(p.app.Keys.Save)))
	editor.Box().SetBorder(true)
	editor.SetSaveFunc(p.app.Keys.Save, func(template string) {
		p.app.closeModal()
		p.save(pr.ID, template)
	})
	editor.SetCancelFunc(p.app.closeModal)
	p.app.showModal(modalEditor, editor, p.app.screenWidth()-8, 20)
}

// save sends the template; the row shows "saving..." until the backend answers
func (p *promptsPage) save(id, template string) {
	eh := p.app.errorHandler
	p.app.async(func(ctx context.Context) {
		if err := p.screen.Save(ctx, id, template); err != nil {
			eh.HandleError(ctx, err, "Failed to save prompt")
			return
		}
		eh.ShowSuccess(ctx, "Prompt saved")
	})
}

func (p *promptsPage) reload() {
	p.app.async(func(ctx context.Context) {
		_ = p.screen.Reload(ctx)
	})
}

func (p *promptsPage) initialize() {
	eh := p.app.errorHandler
	p.app.async(func(ctx context.Context) {
		err := p.screen.Initialize(ctx)
		switch {
		case err == nil:
			eh.ShowSuccess(ctx, "Default prompts created")
		case errors.Is(err, screens.ErrNotEmpty):
			eh.ShowWarning(ctx, "Prompts already exist")
		case errors.Is(err, screens.ErrNotReady):
			eh.ShowWarning(ctx, "Prompts are not loaded yet")
		case errors.Is(err, screens.ErrStale):
		default:
			eh.HandleError(ctx, err, "Failed to create default prompts")
		}
	})
}

func (p *promptsPage) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case keyMatches(p.app.Keys.Reload, event):
		p.reload()
		return nil
	case keyMatches(p.app.Keys.Initialize, event):
		p.initialize()
		return nil
	}
	return event
}

func (p *promptsPage) hints() string {
	return fmt.Sprintf("enter edit | %s reload | %s init defaults",
		keyLabel(p.app.Keys.Reload), keyLabel(p.app.Keys.Initialize))
}
