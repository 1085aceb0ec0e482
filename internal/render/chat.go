package render

import (
	"fmt"
	"strings"

	"github.com/ajramos/mailpilot/internal/config"
	"github.com/ajramos/mailpilot/internal/models"
	"github.com/derailed/tview"
)

// FormatTranscript renders a chat log with role prefixes. A pending line is
// appended while the agent is working.
func FormatTranscript(colors *config.ColorsConfig, messages []models.ChatMessage, width int, pending bool) string {
	if colors == nil {
		colors = config.DefaultColors()
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		label, col := "Agent", colors.Chat.AgentColor
		if m.Role == models.RoleUser {
			label, col = "You", colors.Chat.UserColor
		}
		fmt.Fprintf(&b, "[%s::b]%s[-::-]\n", col.String(), label)
		text := WrapTextPreserving(sanitizeBodyPreservingCode(m.Content), width)
		b.WriteString(TerminalMarkdown(tview.Escape(text)))
		b.WriteString("\n")
	}
	if pending {
		if len(messages) > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]Thinking...[-]\n", colors.Chat.PendingColor.String())
	}
	return b.String()
}
