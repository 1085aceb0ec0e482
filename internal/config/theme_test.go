package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/derailed/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeLoader_BuiltInDefault(t *testing.T) {
	tl := NewThemeLoader(t.TempDir())

	theme, err := tl.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultColors(), theme)

	theme, err = tl.Load(DefaultThemeName)
	require.NoError(t, err)
	assert.Equal(t, DefaultColors(), theme)
}

func TestThemeLoader_UnknownTheme(t *testing.T) {
	_, err := NewThemeLoader(t.TempDir()).Load("solarized")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestThemeLoader_PartialThemeKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := "mailpilot:\n  category:\n    spam: \"#111111\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "muted.yaml"), []byte(yaml), 0644))

	theme, err := NewThemeLoader(dir).Load("muted")
	require.NoError(t, err)
	assert.Equal(t, Color("#111111"), theme.Category.Spam)
	assert.Equal(t, DefaultColors().Category.Important, theme.Category.Important)
}

func TestThemeLoader_MissingSection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("other: {}\n"), 0644))

	_, err := NewThemeLoader(dir).Load("bad")
	assert.ErrorContains(t, err, "missing mailpilot section")
}

func TestThemeLoader_SaveAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "themes")
	tl := NewThemeLoader(dir)

	names, err := tl.ListAvailableThemes()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultThemeName}, names)

	custom := DefaultColors()
	custom.Chat.UserColor = "#00ff00"
	require.NoError(t, tl.SaveThemeToFile(custom, "zeta.yaml"))
	require.NoError(t, tl.SaveThemeToFile(DefaultColors(), "alpha.yaml"))

	names, err = tl.ListAvailableThemes()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultThemeName, "alpha", "zeta"}, names)

	loaded, err := tl.Load("zeta")
	require.NoError(t, err)
	assert.Equal(t, custom, loaded)
}

func TestValidateTheme(t *testing.T) {
	assert.Error(t, ValidateTheme(nil))
	assert.NoError(t, ValidateTheme(DefaultColors()))

	broken := DefaultColors()
	broken.Body.FgColor = ""
	assert.ErrorContains(t, ValidateTheme(broken), "body.fgColor")
}

func TestCategoryColor(t *testing.T) {
	c := DefaultColors()
	assert.Equal(t, c.Category.ToDo, c.CategoryColor("To-Do"))
	assert.Equal(t, c.Category.Spam, c.CategoryColor(" spam "))
	assert.Equal(t, c.Category.Important, c.CategoryColor("Important"))
	assert.Equal(t, c.Category.Default, c.CategoryColor(""))
	assert.Equal(t, c.Category.Default, c.CategoryColor("Receipts"))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#ff5555", Color("#ff5555").String())
	assert.Equal(t, "-", DefaultColor.String())
	assert.Equal(t, "-", Color("").String())
	assert.Equal(t, tcell.ColorDefault, DefaultColor.Color())
	assert.Equal(t, tcell.GetColor("#ff5555").TrueColor(), Color("#ff5555").Color())
}
