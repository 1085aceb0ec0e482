package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/mailpilot/internal/render"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const chatPlaceholder = "Ask me to summarize, extract tasks, or draft a reply."

// detailPage shows one email with the agent chat beside it
type detailPage struct {
	app    *App
	screen *screens.Detail
	id     string

	// chat is bound to the loaded email and dropped on deactivation
	chat *screens.Chat

	root       *tview.Flex
	body       *tview.TextView
	chatPanel  *tview.Flex
	transcript *tview.TextView
	input      *tview.InputField
}

func newDetailPage(app *App, screen *screens.Detail) *detailPage {
	p := &detailPage{app: app, screen: screen}

	p.body = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	app.styleBox(p.body.Box, " Email ")

	p.transcript = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	p.transcript.SetBackgroundColor(app.theme.Body.BgColor.Color())

	p.input = tview.NewInputField().
		SetLabel("> ").
		SetFieldBackgroundColor(tview.Styles.PrimitiveBackgroundColor).
		SetFieldTextColor(tview.Styles.PrimaryTextColor)
	p.input.SetBackgroundColor(app.theme.Body.BgColor.Color())
	p.input.SetDoneFunc(p.inputDone)
	p.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab || event.Key() == tcell.KeyBacktab {
			app.SetFocus(p.body)
			return nil
		}
		return event
	})

	p.chatPanel = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.transcript, 0, 1, false).
		AddItem(p.input, 1, 0, false)
	app.styleBox(p.chatPanel.Box, " AI Assistant ")

	chatWidth := app.Config.Layout.ChatWidth
	p.root = tview.NewFlex().AddItem(p.body, 0, 1, true)
	if chatWidth > 0 {
		p.root.AddItem(p.chatPanel, chatWidth, 0, false)
	} else {
		p.root.AddItem(p.chatPanel, 0, 1, false)
	}

	screen.SetOnChange(func() { app.redraw(p) })
	return p
}

func (p *detailPage) Name() string          { return pageDetail }
func (p *detailPage) Root() tview.Primitive { return p.root }

func (p *detailPage) setID(id string) {
	p.id = id
}

func (p *detailPage) activate() {
	id := p.id
	p.app.async(func(ctx context.Context) {
		_ = p.screen.Activate(ctx, id)
	})
}

func (p *detailPage) deactivate() {
	p.screen.Deactivate()
	p.chat = nil
	p.input.SetText("")
}

// ensureChat starts a chat session once the email is available
func (p *detailPage) ensureChat() {
	email := p.screen.Email()
	if email == nil {
		return
	}
	if p.chat != nil {
		if cur := p.chat.Email(); cur != nil && cur.ID == email.ID {
			return
		}
	}
	p.chat = screens.NewChat(p.app.Backend, p.app.logger, email)
	if cat := email.Category(); cat != "" {
		p.chat.SetContext("Category: " + cat)
	}
	p.chat.SetOnChange(func() { p.app.redraw(p) })
}

func (p *detailPage) refresh() {
	width := p.bodyWidth()
	switch p.screen.Phase() {
	case screens.PhaseIdle, screens.PhaseLoading:
		p.body.SetText(colorTag(p.app.theme.Table.MutedColor) + "Loading email...[-]")
	case screens.PhaseFailed:
		p.body.SetText(fmt.Sprintf("%sEmail not found[-]\n\n%s",
			colorTag(p.app.theme.Status.ErrorColor), tview.Escape(fmt.Sprint(p.screen.Err()))))
	case screens.PhaseReady:
		if e := p.screen.Email(); e != nil {
			p.ensureChat()
			p.body.SetText(p.app.emailRenderer.FormatEmailDetail(*e, width))
			p.body.SetTitle(" " + tview.Escape(orNoSubject(e.Subject)) + " ")
		}
	}
	p.refreshChat()
}

func (p *detailPage) refreshChat() {
	if p.chat == nil {
		p.transcript.SetText(colorTag(p.app.theme.Table.MutedColor) + chatPlaceholder + "[-]")
		return
	}
	messages := p.chat.Messages()
	busy := p.chat.Busy()
	if len(messages) == 0 && !busy {
		p.transcript.SetText(colorTag(p.app.theme.Table.MutedColor) + chatPlaceholder + "[-]")
		return
	}
	p.transcript.SetText(render.FormatTranscript(p.app.theme, messages, p.chatWidth(), busy))
	p.transcript.ScrollToEnd()
}

func (p *detailPage) bodyWidth() int {
	w := p.app.screenWidth() - p.chatWidth() - 6
	if w < 20 {
		w = 20
	}
	return w
}

func (p *detailPage) chatWidth() int {
	if w := p.app.Config.Layout.ChatWidth; w > 0 {
		return w - 2
	}
	return p.app.screenWidth()/2 - 2
}

// inputDone sends the typed message on Enter; Escape leaves the input
func (p *detailPage) inputDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		p.send(p.input.GetText())
	case tcell.KeyEscape:
		p.app.SetFocus(p.body)
	}
}

func (p *detailPage) send(text string) {
	if p.chat == nil || strings.TrimSpace(text) == "" {
		return
	}
	if p.chat.Busy() {
		p.app.errorHandler.ShowWarning(p.app.ctx, "The assistant is still answering")
		return
	}
	p.input.SetText("")
	chat := p.chat
	p.app.async(func(ctx context.Context) {
		chat.Send(ctx, text)
	})
}

// draftReply asks the agent for a draft; typed text becomes the instructions
func (p *detailPage) draftReply() {
	if p.chat == nil {
		p.app.errorHandler.ShowWarning(p.app.ctx, "Email is not loaded yet")
		return
	}
	if p.chat.Busy() {
		p.app.errorHandler.ShowWarning(p.app.ctx, "The assistant is still answering")
		return
	}
	instructions := p.input.GetText()
	chat := p.chat
	eh := p.app.errorHandler
	p.app.async(func(ctx context.Context) {
		if chat.DraftReply(ctx, instructions) {
			msgs := chat.Messages()
			if n := len(msgs); n > 0 && msgs[n-1].Content != screens.DraftApology {
				eh.ShowSuccess(ctx, "Draft saved")
			}
		}
	})
}

func (p *detailPage) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case keyMatches(p.app.Keys.Chat, event):
		p.app.SetFocus(p.input)
		return nil
	case keyMatches(p.app.Keys.DraftReply, event):
		p.draftReply()
		return nil
	case event.Key() == tcell.KeyTab:
		p.app.SetFocus(p.input)
		return nil
	}
	return event
}

func (p *detailPage) hints() string {
	return fmt.Sprintf("%s chat | %s draft reply | %s back",
		keyLabel(p.app.Keys.Chat), keyLabel(p.app.Keys.DraftReply), keyLabel(p.app.Keys.Back))
}

func orNoSubject(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(No subject)"
	}
	return s
}
