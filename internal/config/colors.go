package config

import (
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
)

// Color is a theme color: a tcell color name, a #rrggbb hex value, or
// "default" for the terminal color.
type Color string

const (
	// DefaultColor represents the terminal default
	DefaultColor Color = "default"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns the color as a tview tag value
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor || c == "" {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// BodyColors defines colors for body elements
type BodyColors struct {
	FgColor   Color `yaml:"fgColor"`
	BgColor   Color `yaml:"bgColor"`
	LogoColor Color `yaml:"logoColor"`
}

// BorderColors defines frame border colors
type BorderColors struct {
	FgColor    Color `yaml:"fgColor"`
	FocusColor Color `yaml:"focusColor"`
}

// TitleColors defines frame title colors
type TitleColors struct {
	FgColor        Color `yaml:"fgColor"`
	HighlightColor Color `yaml:"highlightColor"`
	CounterColor   Color `yaml:"counterColor"`
}

// FrameColors defines colors for UI frame elements
type FrameColors struct {
	Border BorderColors `yaml:"border"`
	Title  TitleColors  `yaml:"title"`
}

// TableColors defines colors for list rows
type TableColors struct {
	FgColor       Color `yaml:"fgColor"`
	BgColor       Color `yaml:"bgColor"`
	CursorFgColor Color `yaml:"cursorFgColor"`
	CursorBgColor Color `yaml:"cursorBgColor"`
	UnreadColor   Color `yaml:"unreadColor"`
	MutedColor    Color `yaml:"mutedColor"`
}

// CategoryColors maps backend categories to badge colors
type CategoryColors struct {
	Important  Color `yaml:"important"`
	Newsletter Color `yaml:"newsletter"`
	Work       Color `yaml:"work"`
	Spam       Color `yaml:"spam"`
	ToDo       Color `yaml:"todo"`
	Default    Color `yaml:"default"`
}

// ChatColors defines the transcript colors
type ChatColors struct {
	UserColor    Color `yaml:"userColor"`
	AgentColor   Color `yaml:"agentColor"`
	PendingColor Color `yaml:"pendingColor"`
}

// StatusColors defines status bar colors per message level
type StatusColors struct {
	InfoColor    Color `yaml:"infoColor"`
	WarningColor Color `yaml:"warningColor"`
	ErrorColor   Color `yaml:"errorColor"`
	SuccessColor Color `yaml:"successColor"`
}

// ColorsConfig defines the complete color configuration
type ColorsConfig struct {
	Body     BodyColors     `yaml:"body"`
	Frame    FrameColors    `yaml:"frame"`
	Table    TableColors    `yaml:"table"`
	Category CategoryColors `yaml:"category"`
	Chat     ChatColors     `yaml:"chat"`
	Status   StatusColors   `yaml:"status"`
}

// CategoryColor returns the badge color for a backend category name
func (c *ColorsConfig) CategoryColor(category string) Color {
	var col Color
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "important":
		col = c.Category.Important
	case "newsletter":
		col = c.Category.Newsletter
	case "work":
		col = c.Category.Work
	case "spam":
		col = c.Category.Spam
	case "to-do", "todo":
		col = c.Category.ToDo
	}
	if col == "" {
		return c.Category.Default
	}
	return col
}

// DefaultColors returns the built-in dark theme
func DefaultColors() *ColorsConfig {
	return &ColorsConfig{
		Body: BodyColors{
			FgColor:   NewColor("#f8f8f2"),
			BgColor:   NewColor("#282a36"),
			LogoColor: NewColor("#bd93f9"),
		},
		Frame: FrameColors{
			Border: BorderColors{
				FgColor:    NewColor("#44475a"),
				FocusColor: NewColor("#6272a4"),
			},
			Title: TitleColors{
				FgColor:        NewColor("#f8f8f2"),
				HighlightColor: NewColor("#f1fa8c"),
				CounterColor:   NewColor("#50fa7b"),
			},
		},
		Table: TableColors{
			FgColor:       NewColor("#f8f8f2"),
			BgColor:       NewColor("#282a36"),
			CursorFgColor: NewColor("#282a36"),
			CursorBgColor: NewColor("#8be9fd"),
			UnreadColor:   NewColor("#ffb86c"),
			MutedColor:    NewColor("#6272a4"),
		},
		// Same hues as the web client's badges
		Category: CategoryColors{
			Important:  NewColor("#ff5555"),
			Newsletter: NewColor("#8be9fd"),
			Work:       NewColor("#bd93f9"),
			Spam:       NewColor("#6272a4"),
			ToDo:       NewColor("#50fa7b"),
			Default:    NewColor("#f8f8f2"),
		},
		Chat: ChatColors{
			UserColor:    NewColor("#8be9fd"),
			AgentColor:   NewColor("#f8f8f2"),
			PendingColor: NewColor("#6272a4"),
		},
		Status: StatusColors{
			InfoColor:    NewColor("#8be9fd"),
			WarningColor: NewColor("#f1fa8c"),
			ErrorColor:   NewColor("#ff5555"),
			SuccessColor: NewColor("#50fa7b"),
		},
	}
}
