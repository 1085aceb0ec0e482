package tui

import (
	"github.com/ajramos/mailpilot/internal/config"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// applyTheme sets the global tview styles from the theme
func (a *App) applyTheme(theme *config.ColorsConfig) {
	tview.Styles.PrimitiveBackgroundColor = theme.Body.BgColor.Color()
	tview.Styles.PrimaryTextColor = theme.Body.FgColor.Color()
	tview.Styles.BorderColor = theme.Frame.Border.FgColor.Color()
	tview.Styles.FocusColor = theme.Frame.Border.FocusColor.Color()
}

// styleBox applies the frame colors to a bordered container
func (a *App) styleBox(box *tview.Box, title string) {
	box.SetBackgroundColor(a.theme.Body.BgColor.Color())
	box.SetBorder(a.Config.Layout.ShowBorders).
		SetBorderColor(a.theme.Frame.Border.FgColor.Color()).
		SetBorderAttributes(tcell.AttrBold).
		SetTitle(title).
		SetTitleColor(a.theme.Frame.Title.FgColor.Color()).
		SetTitleAlign(tview.AlignCenter)
}

// styleTable applies list colors and the cursor style
func (a *App) styleTable(t *tview.Table) {
	t.SetBackgroundColor(a.theme.Table.BgColor.Color())
	t.SetSelectedStyle(tcell.StyleDefault.
		Foreground(a.theme.Table.CursorFgColor.Color()).
		Background(a.theme.Table.CursorBgColor.Color()))
}

// colorTag returns a tview color tag for c
func colorTag(c config.Color) string {
	return "[" + c.String() + "]"
}
