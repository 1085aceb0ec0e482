package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvAPIURL overrides the backend base address. It is the only
	// environment variable mailpilot reads.
	EnvAPIURL = "MAILPILOT_API_URL"

	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 60 * time.Second
	appDirName     = "mailpilot"
)

// APIConfig holds the backend connection settings
type APIConfig struct {
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"` // Go duration, e.g. "60s"
}

// LayoutConfig defines layout-specific configuration
type LayoutConfig struct {
	ShowBorders    bool   `json:"show_borders"`
	ChatWidth      int    `json:"chat_width"`       // Chat sidebar columns on the detail page
	CurrentTheme   string `json:"current_theme"`    // Active theme name (e.g., "mailpilot-dark")
	CustomThemeDir string `json:"custom_theme_dir"` // Custom themes directory (empty = default)
}

// MetricsConfig controls the optional Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
}

// KeyBindings defines keyboard shortcuts for the TUI
type KeyBindings struct {
	// Navigation between screens
	Inbox   string `json:"inbox"`
	Drafts  string `json:"drafts"`
	Prompts string `json:"prompts"`
	Back    string `json:"back"`

	// Inbox and detail
	Refresh    string `json:"refresh"`
	Chat       string `json:"chat"`        // Focus the chat input
	DraftReply string `json:"draft_reply"` // Ask the agent for a reply draft

	// Drafts
	Delete    string `json:"delete"`
	Edit      string `json:"edit"`
	OpenEmail string `json:"open_email"` // Open the email a draft answers

	// Prompt brain
	Save       string `json:"save"`
	Reload     string `json:"reload"`
	Initialize string `json:"initialize"` // Seed default prompts

	Help string `json:"help"`
	Quit string `json:"quit"`
}

// Config holds all configuration for mailpilot
type Config struct {
	API     APIConfig     `json:"api"`
	Layout  LayoutConfig  `json:"layout"`
	Keys    KeyBindings   `json:"keys"`
	Metrics MetricsConfig `json:"metrics"`

	// Logging
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: defaultBaseURL,
			Timeout: "60s",
		},
		Layout:  DefaultLayoutConfig(),
		Keys:    DefaultKeyBindings(),
		Metrics: MetricsConfig{Enabled: false, Listen: "127.0.0.1:9464"},
		LogFile: "",
		// info keeps request-level noise out of the file
		LogLevel: "info",
	}
}

// DefaultLayoutConfig returns default layout configuration
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		ShowBorders:    true,
		ChatWidth:      48,
		CurrentTheme:   "mailpilot-dark",
		CustomThemeDir: "",
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Inbox:   "1",
		Drafts:  "2",
		Prompts: "3",
		Back:    "esc",

		Refresh:    "R",
		Chat:       "c",
		DraftReply: "g",

		Delete:    "d",
		Edit:      "e",
		OpenEmail: "o",

		Save:       "ctrl+s",
		Reload:     "r",
		Initialize: "I",

		Help: "?",
		Quit: "q",
	}
}

// LoadEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadConfig loads configuration from file, then applies the environment
// overrides. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", configPath, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid api.base_url %q: want an http(s) address", c.API.BaseURL)
	}
	if c.API.Timeout != "" {
		if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("invalid api.timeout %q", c.API.Timeout)
		}
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Listen) == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}
	if c.Layout.ChatWidth < 0 {
		return fmt.Errorf("invalid layout.chat_width %d", c.Layout.ChatWidth)
	}
	return nil
}

// GetAPITimeout returns the parsed per-request timeout
func (c *Config) GetAPITimeout() time.Duration {
	if c.API.Timeout != "" {
		if d, err := time.ParseDuration(c.API.Timeout); err == nil && d > 0 {
			return d
		}
	}
	return defaultTimeout
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigDir returns ~/.config/mailpilot
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultConfigPath returns the configuration file path used when --config
// is not given
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// DefaultLogPath returns the log file used when log_file is empty
func DefaultLogPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "mailpilot.log")
}

// DefaultThemesDir returns the directory holding user themes
func DefaultThemesDir() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "themes")
}
