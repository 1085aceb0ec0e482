package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/ajramos/mailpilot/internal/config"
	"github.com/ajramos/mailpilot/internal/render"
	"github.com/ajramos/mailpilot/internal/screens"
	"github.com/ajramos/mailpilot/internal/version"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"go.uber.org/zap"
)

// Page names
const (
	pageInbox   = "inbox"
	pageDetail  = "detail"
	pageDrafts  = "drafts"
	pagePrompts = "prompts"

	modalHelp    = "help"
	modalConfirm = "confirm"
	modalEditor  = "editor"
)

// page is one full-screen view bound to a screen synchronizer
type page interface {
	Name() string
	Root() tview.Primitive
	// activate starts a fresh fetch; called on the UI goroutine
	activate()
	// deactivate discards the page state
	deactivate()
	// refresh rebuilds widgets from the synchronizer state; UI goroutine only
	refresh()
	handleKey(event *tcell.EventKey) *tcell.EventKey
	hints() string
}

// endpointer is implemented by backends that know their address
type endpointer interface {
	BaseURL() string
}

// App encapsulates the terminal UI and the backend gateway
type App struct {
	*tview.Application
	Pages   *Pages
	Config  *config.Config
	Backend screens.Backend
	Keys    config.KeyBindings

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	logger *zap.Logger

	theme         *config.ColorsConfig
	emailRenderer *render.EmailRenderer
	errorHandler  *ErrorHandler
	status        *tview.TextView
	root          *tview.Flex

	inbox   *inboxPage
	detail  *detailPage
	drafts  *draftsPage
	prompts *promptsPage
	pages   map[string]page

	current string
	modal   string
	width   int

	// queue runs f on the UI goroutine; replaced in tests
	queue   func(f func())
	workers sync.WaitGroup
}

// NewApp wires the pages to the backend. A nil theme selects the built-in one.
func NewApp(backend screens.Backend, cfg *config.Config, theme *config.ColorsConfig, logger *zap.Logger) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if theme == nil {
		theme = config.DefaultColors()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Application:   tview.NewApplication(),
		Pages:         NewPages(),
		Config:        cfg,
		Backend:       backend,
		Keys:          cfg.Keys,
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger.Named("tui"),
		theme:         theme,
		emailRenderer: render.NewEmailRenderer(theme),
		pages:         make(map[string]page),
		width:         100,
	}
	app.queue = func(f func()) {
		// the event loop is gone once the app context is cancelled
		if app.ctx.Err() != nil {
			return
		}
		app.QueueUpdateDraw(f)
	}

	app.applyTheme(theme)
	app.initComponents()
	app.bindKeys()

	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		w, _ := screen.Size()
		app.mu.Lock()
		resized := w != app.width
		app.width = w
		app.mu.Unlock()
		if resized {
			app.refreshCurrent()
		}
		return false
	})

	return app
}

// initComponents builds the status bar, the pages and the root layout
func (a *App) initComponents() {
	a.status = tview.NewTextView().SetDynamicColors(true)
	a.status.SetBackgroundColor(a.theme.Body.BgColor.Color())
	a.status.SetTextColor(a.theme.Body.FgColor.Color())
	a.errorHandler = NewErrorHandler(a.Application, a, a.status, a.logger)

	a.inbox = newInboxPage(a, screens.NewInbox(a.Backend, a.logger))
	a.detail = newDetailPage(a, screens.NewDetail(a.Backend, a.logger))
	a.drafts = newDraftsPage(a, screens.NewDrafts(a.Backend, a.logger))
	a.prompts = newPromptsPage(a, screens.NewPrompts(a.Backend, a.logger))

	for _, p := range []page{a.inbox, a.detail, a.drafts, a.prompts} {
		a.pages[p.Name()] = p
		a.Pages.AddPage(p.Name(), p.Root(), true, false)
	}

	a.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.Pages, 0, 1, true).
		AddItem(a.status, 1, 0, false)
}

// Run shows the inbox and blocks until the user quits
func (a *App) Run() error {
	a.SetRoot(a.root, true)
	a.navigate(pageInbox)
	a.errorHandler.refreshStatusDisplay()

	err := a.Application.Run()
	a.Shutdown()
	return err
}

// Shutdown cancels in-flight requests and waits for background work
func (a *App) Shutdown() {
	a.cancel()
	a.workers.Wait()
	a.drafts.screen.Wait()
	a.errorHandler.Close()
}

// CurrentPage returns the visible page name
func (a *App) CurrentPage() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

func (a *App) screenWidth() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.width
}

// async runs fn off the UI goroutine with the app context
func (a *App) async(fn func(ctx context.Context)) {
	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		fn(a.ctx)
	}()
}

// redraw schedules p.refresh on the UI goroutine if p is still visible
func (a *App) redraw(p page) {
	a.queue(func() {
		if a.CurrentPage() == p.Name() {
			p.refresh()
		}
	})
}

func (a *App) refreshCurrent() {
	if p, ok := a.pages[a.CurrentPage()]; ok {
		p.refresh()
	}
}

// navigate opens a top-level page and resets the back stack
func (a *App) navigate(name string) {
	a.Pages.stack.Clear()
	a.open(name)
}

// open deactivates the visible page and activates name on top of the stack
func (a *App) open(name string) {
	p, ok := a.pages[name]
	if !ok {
		return
	}
	a.closeModal()
	if cur, ok := a.pages[a.CurrentPage()]; ok {
		cur.deactivate()
	}
	a.Pages.stack.Push(name)
	a.show(p)
}

// back returns to the previous page; on a top-level page it does nothing
func (a *App) back() {
	if a.Pages.stack.Len() < 2 {
		return
	}
	if cur, ok := a.pages[a.Pages.stack.Pop()]; ok {
		cur.deactivate()
	}
	if p, ok := a.pages[a.Pages.stack.Top()]; ok {
		a.show(p)
	}
}

func (a *App) show(p page) {
	a.mu.Lock()
	a.current = p.Name()
	a.mu.Unlock()

	a.Pages.SwitchToPage(p.Name())
	a.SetFocus(p.Root())
	p.activate()
	p.refresh()
	a.errorHandler.refreshStatusDisplay()
}

// openEmail shows the detail page for id
func (a *App) openEmail(id string) {
	a.detail.setID(id)
	a.open(pageDetail)
}

// showModal overlays a centered primitive and gives it focus
func (a *App) showModal(name string, p tview.Primitive, width, height int) {
	a.closeModal()
	a.mu.Lock()
	a.modal = name
	a.mu.Unlock()
	a.Pages.AddPage(name, centered(p, width, height), true, true)
	a.SetFocus(p)
}

// closeModal removes the overlay, if any, and restores page focus
func (a *App) closeModal() {
	a.mu.Lock()
	name := a.modal
	a.modal = ""
	a.mu.Unlock()
	if name == "" {
		return
	}
	a.Pages.RemovePage(name)
	if p, ok := a.pages[a.CurrentPage()]; ok {
		a.SetFocus(p.Root())
	}
}

// Modal returns the name of the open overlay, or ""
func (a *App) Modal() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.modal
}

// statusBaseline is shown when no message is pending
func (a *App) statusBaseline() string {
	hints := ""
	if p, ok := a.pages[a.CurrentPage()]; ok {
		hints = p.hints()
	}
	base := fmt.Sprintf("mailpilot %s", version.GetVersion())
	if b, ok := a.Backend.(endpointer); ok {
		base += " | " + b.BaseURL()
	}
	base += fmt.Sprintf(" | %s help | %s quit", keyLabel(a.Keys.Help), keyLabel(a.Keys.Quit))
	if hints == "" {
		return base
	}
	return base + " | " + hints
}

// getStatusColor maps a message level to the theme status color
func (a *App) getStatusColor(level string) tcell.Color {
	switch level {
	case "error":
		return a.theme.Status.ErrorColor.Color()
	case "success":
		return a.theme.Status.SuccessColor.Color()
	case "warning":
		return a.theme.Status.WarningColor.Color()
	default:
		return a.theme.Status.InfoColor.Color()
	}
}

// centered wraps p in a flex grid that keeps it in the middle of the screen
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
