package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultThemeName is the built-in theme, available without any file
const DefaultThemeName = "mailpilot-dark"

// themeFile is the YAML document layout of a theme
type themeFile struct {
	Mailpilot *ColorsConfig `yaml:"mailpilot"`
}

// ThemeLoader handles loading and saving themes
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a new theme loader
func NewThemeLoader(themesDir string) *ThemeLoader {
	return &ThemeLoader{
		themesDir: themesDir,
	}
}

// Load returns the named theme. The built-in theme is used when name is
// empty or names the default and no file overrides it.
func (tl *ThemeLoader) Load(name string) (*ColorsConfig, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".yaml")
	if name == "" {
		name = DefaultThemeName
	}
	theme, err := tl.LoadThemeFromFile(name + ".yaml")
	if err != nil {
		if name == DefaultThemeName && errors.Is(err, os.ErrNotExist) {
			return DefaultColors(), nil
		}
		return nil, err
	}
	return theme, nil
}

// LoadThemeFromFile loads a theme from a YAML file. Colors missing from the
// file keep their built-in values.
func (tl *ThemeLoader) LoadThemeFromFile(filename string) (*ColorsConfig, error) {
	// Try to load from themes directory first
	path := filepath.Join(tl.themesDir, filename)
	if !fileExists(path) {
		path = filename
		if !fileExists(path) {
			return nil, fmt.Errorf("theme %s: %w", filename, os.ErrNotExist)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var probe themeFile
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if probe.Mailpilot == nil {
		return nil, fmt.Errorf("invalid theme file: missing mailpilot section")
	}

	// decode again over the defaults so partial themes are complete
	doc := themeFile{Mailpilot: DefaultColors()}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if err := ValidateTheme(doc.Mailpilot); err != nil {
		return nil, err
	}
	return doc.Mailpilot, nil
}

// ListAvailableThemes returns theme names found on disk plus the built-in one
func (tl *ThemeLoader) ListAvailableThemes() ([]string, error) {
	themes := []string{DefaultThemeName}

	entries, err := os.ReadDir(tl.themesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return themes, nil
		}
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		if name != DefaultThemeName {
			themes = append(themes, name)
		}
	}
	sort.Strings(themes[1:])
	return themes, nil
}

// SaveThemeToFile saves a theme configuration to a YAML file
func (tl *ThemeLoader) SaveThemeToFile(theme *ColorsConfig, filename string) error {
	if err := os.MkdirAll(tl.themesDir, 0755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}

	data, err := yaml.Marshal(themeFile{Mailpilot: theme})
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	if err := os.WriteFile(filepath.Join(tl.themesDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	return nil
}

// ValidateTheme checks the colors every page depends on
func ValidateTheme(theme *ColorsConfig) error {
	if theme == nil {
		return fmt.Errorf("theme is nil")
	}

	required := []struct {
		name  string
		color Color
	}{
		{"body.fgColor", theme.Body.FgColor},
		{"body.bgColor", theme.Body.BgColor},
		{"table.cursorBgColor", theme.Table.CursorBgColor},
		{"category.default", theme.Category.Default},
		{"status.errorColor", theme.Status.ErrorColor},
	}
	for _, req := range required {
		if req.color == "" {
			return fmt.Errorf("missing required color: %s", req.name)
		}
	}
	return nil
}

// Helper function to check if file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
