package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/mailpilot/internal/config"
	"github.com/ajramos/mailpilot/internal/models"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/mattn/go-runewidth"
)

const (
	senderWidth = 22
	dateWidth   = 8
	badgeWidth  = 12
	minRowWidth = 40
)

// EmailRenderer formats emails, drafts and prompts for list and detail views
type EmailRenderer struct {
	colors *config.ColorsConfig
	now    func() time.Time
}

// NewEmailRenderer creates a renderer; nil colors selects the built-in theme
func NewEmailRenderer(colors *config.ColorsConfig) *EmailRenderer {
	if colors == nil {
		colors = config.DefaultColors()
	}
	return &EmailRenderer{colors: colors, now: time.Now}
}

// SetClock overrides the time source used for relative dates
func (er *EmailRenderer) SetClock(now func() time.Time) {
	if now != nil {
		er.now = now
	}
}

// FormatEmailList formats an inbox row: Sender | Badge Subject | Date. The
// returned color is the row foreground.
func (er *EmailRenderer) FormatEmailList(e models.Email, maxWidth int) (string, tcell.Color) {
	if maxWidth < minRowWidth {
		maxWidth = minRowWidth
	}

	sender := extractSenderName(e.Sender)
	if sender == "" {
		sender = "(No sender)"
	}
	subject := e.Subject
	if subject == "" {
		subject = "(No subject)"
	}

	date := ""
	if t, ok := e.Time(); ok {
		date = er.formatRelativeTime(t)
	}

	badge := ""
	if cat := e.Category(); cat != "" {
		badge = fitWidth("["+cat+"]", badgeWidth) + " "
	}
	badgeText := tview.Escape(badge)
	if badge != "" {
		badgeText = fmt.Sprintf("[%s]%s[-]", er.colors.CategoryColor(e.Category()).String(), badgeText)
	}

	// separators " | " twice
	subjectWidth := maxWidth - senderWidth - dateWidth - 6 - runewidth.StringWidth(badge)
	if subjectWidth < 10 {
		subjectWidth = 10
	}

	row := fmt.Sprintf("%s | %s%s | %s",
		tview.Escape(fitWidth(sender, senderWidth)),
		badgeText,
		tview.Escape(fitWidth(subject, subjectWidth)),
		fitWidth(date, dateWidth),
	)

	color := er.colors.Table.FgColor.Color()
	if !e.IsRead {
		color = er.colors.Table.UnreadColor.Color()
	}
	return row, color
}

// FormatPreview returns a one-line preview: the summary when present, else the body
func (er *EmailRenderer) FormatPreview(e models.Email, maxWidth int) string {
	preview := strings.Join(strings.Fields(sanitizeForTerminal(e.Preview())), " ")
	return runewidth.Truncate(preview, maxWidth, "...")
}

// FormatEmailHeader renders the detail header with tview color tags
func (er *EmailRenderer) FormatEmailHeader(e models.Email) string {
	key := fmt.Sprintf("[%s]", er.colors.Frame.Title.HighlightColor.String())
	var b strings.Builder
	fmt.Fprintf(&b, "%sSubject:[-] %s\n", key, tview.Escape(orDefault(e.Subject, "(No subject)")))
	fmt.Fprintf(&b, "%sFrom:[-] %s\n", key, tview.Escape(orDefault(e.Sender, "(No sender)")))
	if t, ok := e.Time(); ok {
		fmt.Fprintf(&b, "%sDate:[-] %s\n", key, formatDate(t))
	}
	if cat := e.Category(); cat != "" {
		fmt.Fprintf(&b, "%sCategory:[-] [%s]%s[-]\n", key, er.colors.CategoryColor(cat).String(), tview.Escape(cat))
	}
	return b.String()
}

// FormatEmailDetail renders header, summary, action items and wrapped body
func (er *EmailRenderer) FormatEmailDetail(e models.Email, width int) string {
	var b strings.Builder
	b.WriteString(er.FormatEmailHeader(e))

	if e.Metadata != nil && strings.TrimSpace(e.Metadata.Summary) != "" {
		b.WriteString("\n[::b]Summary[::-]\n")
		b.WriteString(tview.Escape(WrapTextPreserving(sanitizeForTerminal(e.Metadata.Summary), width)))
		b.WriteString("\n")
	}

	if items := e.ActionItems(); len(items) > 0 {
		b.WriteString("\n[::b]Action items[::-]\n")
		for _, item := range items {
			b.WriteString(tview.Escape(formatActionItem(item)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(tview.Escape(FormatBody(e.Body, width)))
	return b.String()
}

func formatActionItem(item models.ActionItem) string {
	line := "- " + item.Task
	var extra []string
	if item.Deadline != "" {
		extra = append(extra, "due "+item.Deadline)
	}
	if item.Priority != "" {
		extra = append(extra, strings.ToLower(item.Priority)+" priority")
	}
	if len(extra) > 0 {
		line += " (" + strings.Join(extra, ", ") + ")"
	}
	return line
}

// FormatDraftList formats a drafts row: Status | Subject | Generated ...
func (er *EmailRenderer) FormatDraftList(d models.Draft, maxWidth int) string {
	if maxWidth < minRowWidth {
		maxWidth = minRowWidth
	}
	status := fitWidth(string(d.Status), 9)
	age := "Generated " + d.Age(er.now())
	subjectWidth := maxWidth - 9 - 6 - runewidth.StringWidth(age)
	if subjectWidth < 10 {
		subjectWidth = 10
	}
	return tview.Escape(fmt.Sprintf("%s | %s | %s", status, fitWidth(orDefault(d.Subject, "(No subject)"), subjectWidth), age))
}

// FormatPromptList formats a prompt row: Name [type] Active
func (er *EmailRenderer) FormatPromptList(p models.Prompt, maxWidth int) string {
	if maxWidth < minRowWidth {
		maxWidth = minRowWidth
	}
	active := ""
	if p.IsActive {
		active = fmt.Sprintf(" [%s]Active[-]", er.colors.Status.SuccessColor.String())
	}
	nameWidth := maxWidth - 16 - 7
	if nameWidth < 10 {
		nameWidth = 10
	}
	return tview.Escape(fitWidth(p.Name, nameWidth)+" "+fitWidth("["+string(p.Type)+"]", 16)) + active
}

func extractSenderName(from string) string {
	from = strings.TrimSpace(from)
	// Handle "Name <email@domain.com>" format
	if i := strings.Index(from, "<"); i > 0 && strings.Contains(from, ">") {
		return strings.Trim(strings.TrimSpace(from[:i]), `"`)
	}
	return from
}

// fitWidth truncates and pads on the right to fit a fixed width
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "...")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (er *EmailRenderer) formatRelativeTime(date time.Time) string {
	diff := er.now().Sub(date)

	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff.Hours()/24))
	}
	return date.Format("Jan 2")
}

func formatDate(date time.Time) string {
	return date.Format("Mon, 02 Jan 2006 15:04")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
