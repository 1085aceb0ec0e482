package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// LinkRef is a URL pulled out of a body and replaced by [n]
type LinkRef struct {
	Index int
	URL   string
}

var (
	urlPattern   = regexp.MustCompile(`(?i)\bhttps?://[\w\-\._~:/%\?#\[\]@!$&'()*+,;=]+`)
	urlToken     = regexp.MustCompile(`(?i)^[a-z][a-z0-9+\-.]*://\S+$`)
	boldMarkdown = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
)

// FormatBody prepares a plain-text body for a terminal of the given width:
// glyph cleanup, duplicate line removal, URL references and wrapping.
func FormatBody(body string, width int) string {
	text := normalizeNewlines(body)
	text = sanitizeBodyPreservingCode(text)
	text = dedupeConsecutiveLines(text)
	links, text := detectPlainTextLinks(text)
	text = WrapTextPreserving(strings.TrimSpace(text), width)
	if len(links) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n[LINKS]\n")
	for _, l := range links {
		fmt.Fprintf(&b, "(%d) %s\n", l.Index, l.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// detectPlainTextLinks finds URLs in plain text and replaces them with [n] references
func detectPlainTextLinks(input string) ([]LinkRef, string) {
	idx := 0
	links := make([]LinkRef, 0, 4)
	replaced := urlPattern.ReplaceAllStringFunc(input, func(m string) string {
		idx++
		links = append(links, LinkRef{Index: idx, URL: m})
		return fmt.Sprintf("[%d]", idx)
	})
	return links, replaced
}

// sanitizeBodyPreservingCode applies glyph/whitespace sanitization to non-code lines
func sanitizeBodyPreservingCode(s string) string {
	lines := strings.Split(s, "\n")
	inCode := false
	for i, ln := range lines {
		if strings.HasPrefix(strings.TrimSpace(ln), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		lines[i] = sanitizeForTerminal(ln)
	}
	return strings.Join(lines, "\n")
}

// sanitizeForTerminal replaces common rich-text glyphs with ASCII-safe equivalents
func sanitizeForTerminal(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u00A0', '\u202F': // no-break spaces
			b.WriteRune(' ')
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u034F', '\u2060', '\u00AD':
			// invisible
		case '\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005', '\u2006', '\u2007', '\u2008', '\u2009', '\u200A':
			b.WriteRune(' ')
		case '\u2013', '\u2014':
			b.WriteRune('-')
		case '\u2022', '\u2043', '\u25AA', '\u25CF', '\u25E6':
			b.WriteString("- ")
		case '\u2018', '\u2019':
			b.WriteRune('\'')
		case '\u201C', '\u201D':
			b.WriteRune('"')
		case '\u2026':
			b.WriteString("...")
		default:
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				continue
			}
			// symbols render as tofu on many terminals
			if unicode.Is(unicode.So, r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return collapseBlankLines(b.String())
}

// dedupeConsecutiveLines drops repeated lines, common in quoted footers
func dedupeConsecutiveLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	var prev string
	for _, ln := range lines {
		cur := strings.TrimRight(ln, " ")
		trimmed := strings.TrimSpace(cur)
		if trimmed != "" && trimmed == prev {
			continue
		}
		out = append(out, cur)
		prev = trimmed
	}
	return collapseBlankLines(strings.Join(out, "\n"))
}

// WrapTextPreserving wraps text to width preserving quotes (> ), code blocks and URLs
func WrapTextPreserving(input string, width int) string {
	if width <= 0 {
		return input
	}
	lines := strings.Split(normalizeNewlines(input), "\n")
	out := make([]string, 0, len(lines))
	inCode := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			out = append(out, line)
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

// wrapLine wraps one logical line, repeating its quote prefix
func wrapLine(line string, width int) []string {
	prefix := ""
	rest := line
	for strings.HasPrefix(rest, "> ") {
		prefix += "> "
		rest = strings.TrimPrefix(rest, "> ")
	}
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return []string{strings.TrimRight(prefix, " ")}
	}

	var out []string
	cur := prefix
	flush := func() {
		out = append(out, strings.TrimRight(cur, " "))
		cur = prefix
	}
	empty := func() bool { return cur == prefix }

	for _, tok := range tokens {
		tw := runewidth.StringWidth(tok)
		cw := runewidth.StringWidth(cur)
		switch {
		case empty() && (cw+tw <= width || urlToken.MatchString(tok)):
			cur += tok
		case !empty() && cw+1+tw <= width:
			cur += " " + tok
		case urlToken.MatchString(tok) || tw <= width-runewidth.StringWidth(prefix):
			flush()
			cur += tok
		default:
			// hard cut tokens longer than a line
			if !empty() {
				flush()
			}
			for _, r := range tok {
				if runewidth.StringWidth(cur)+runewidth.RuneWidth(r) > width && !empty() {
					flush()
				}
				cur += string(r)
			}
		}
	}
	flush()
	return out
}

// TerminalMarkdown turns **bold** spans into tview bold tags. Input must
// already be escaped.
func TerminalMarkdown(s string) string {
	return boldMarkdown.ReplaceAllString(s, "[::b]$1[::-]")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return collapseBlankLines(s)
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
