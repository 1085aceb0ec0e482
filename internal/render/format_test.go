package render

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlainTextLinks(t *testing.T) {
	body := "Check this https://example.com/page?x=1#sec and this http://foo.bar"
	links, replaced := detectPlainTextLinks(body)
	require.Len(t, links, 2)
	assert.Contains(t, replaced, "[1]")
	assert.Contains(t, replaced, "[2]")
	assert.Equal(t, "http://foo.bar", links[1].URL)
}

func TestSanitizeBodyPreservingCode(t *testing.T) {
	in := "Line \u2026 with \u2013 unicode\n```\nkeep \u2605 inside code\n```\nBack \u2022 outside"
	out := sanitizeBodyPreservingCode(in)

	assert.Contains(t, out, "\u2605", "symbols inside code are preserved")
	assert.NotContains(t, out, "\u2022")
	assert.Contains(t, out, "Line ... with - unicode")
}

func TestSanitizeForTerminal_DropsInvisible(t *testing.T) {
	assert.Equal(t, "ab c", sanitizeForTerminal("a\u200Bb c"))
	assert.Equal(t, "a\n\nb", sanitizeForTerminal("a\n\n\n\n\nb"))
}

func TestDedupeConsecutiveLines(t *testing.T) {
	assert.Equal(t, "Thanks\n\nSent from phone", dedupeConsecutiveLines("Thanks\nThanks\n\nSent from phone"))
}

func TestWrapTextPreserving(t *testing.T) {
	in := "The Q3 roadmap review has been moved to Thursday at 2pm, please update your slides"
	out := WrapTextPreserving(in, 20)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 20, line)
	}
	assert.Equal(t, strings.Fields(in), strings.Fields(out), "wrapping must not lose words")
}

func TestWrapTextPreserving_QuotesAndURLs(t *testing.T) {
	url := "https://example.com/a/very/long/path/that/exceeds/the/width"
	out := WrapTextPreserving("> quoted text that is long enough to wrap\nsee "+url, 16)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "> "))
	assert.True(t, strings.HasPrefix(lines[1], "> "))
	assert.Contains(t, lines, url, "URLs are never broken")
}

func TestWrapTextPreserving_HardCutsLongTokens(t *testing.T) {
	out := WrapTextPreserving(strings.Repeat("x", 25), 10)
	assert.Equal(t, "xxxxxxxxxx\nxxxxxxxxxx\nxxxxx", out)
}

func TestWrapTextPreserving_CodeUntouched(t *testing.T) {
	in := "```\nfunc main() { fmt.Println(\"a long line that should not wrap\") }\n```"
	assert.Equal(t, in, WrapTextPreserving(in, 10))
}

func TestFormatBody_LinksSection(t *testing.T) {
	out := FormatBody("Hello \u2022 world https://example.com", 80)
	assert.Contains(t, out, "[LINKS]")
	assert.Contains(t, out, "(1) https://example.com")
	assert.NotContains(t, out, "\u2022")
}

func TestTerminalMarkdown(t *testing.T) {
	assert.Equal(t, "done [::b](Saved to Drafts)[::-]", TerminalMarkdown("done **(Saved to Drafts)**"))
	assert.Equal(t, "a * b", TerminalMarkdown("a * b"))
}
