package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ajramos/mailpilot/internal/api"
	"github.com/ajramos/mailpilot/internal/config"
	"github.com/ajramos/mailpilot/internal/logging"
	"github.com/ajramos/mailpilot/internal/tui"
	"github.com/ajramos/mailpilot/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/mailpilot/config.json)")
	apiURLFlag := flag.String("api-url", "", "Backend base address (overrides config and MAILPILOT_API_URL)")
	setupFlag := flag.Bool("setup", false, "Write a default configuration and theme, then exit")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # Run with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --api-url http://localhost:8000   # Talk to a specific backend\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --setup                           # Create the default config\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %-18s Override the backend base address\n", config.EnvAPIURL)
		fmt.Fprintf(os.Stderr, "\nVariables may also be set in a .env file in the working directory.\n")
	}

	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: could not load .env: %v", err)
	}

	configPath := getConfigPath(*configPathFlag)

	if *setupFlag {
		if err := runSetup(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}
	if *apiURLFlag != "" {
		cfg.API.BaseURL = *apiURLFlag
	}

	logger, closeLog, err := logging.New(getLogPath(cfg.LogFile), cfg.LogLevel)
	if err != nil {
		log.Printf("Warning: could not open log file: %v", err)
		logger, closeLog = zap.NewNop(), func() error { return nil }
	}
	defer func() { _ = closeLog() }()

	theme, err := config.NewThemeLoader(getThemesDir(cfg.Layout.CustomThemeDir)).Load(cfg.Layout.CurrentTheme)
	if err != nil {
		logger.Warn("theme not available, using built-in colors",
			zap.String("theme", cfg.Layout.CurrentTheme), zap.Error(err))
		theme = config.DefaultColors()
	}

	opts := []api.Option{
		api.WithTimeout(cfg.GetAPITimeout()),
		api.WithLogger(logger),
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, api.WithMetrics(reg))
		metricsSrv = startMetrics(cfg.Metrics.Listen, reg, logger)
	}

	client := api.NewClient(cfg.API.BaseURL, opts...)
	logger.Info("starting",
		zap.String("version", version.GetVersion()),
		zap.String("backend", client.BaseURL()),
		zap.String("config", configPath))

	app := tui.NewApp(client, cfg, theme, logger)
	runErr := app.Run()

	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metricsSrv.Shutdown(ctx)
		cancel()
	}

	if runErr != nil {
		logger.Error("application exited", zap.Error(runErr))
		_ = closeLog()
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", runErr)
		os.Exit(1)
	}
}

// startMetrics serves the registry on /metrics until shut down
func startMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("metrics enabled", zap.String("addr", addr))
	return srv
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Default path ~/.config/mailpilot/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return expandPath(flagValue)
	}
	return expandPath(config.DefaultConfigPath())
}

// getLogPath returns the configured log file, or the default one
func getLogPath(configValue string) string {
	if strings.TrimSpace(configValue) != "" {
		return expandPath(configValue)
	}
	return config.DefaultLogPath()
}

// getThemesDir returns the custom theme directory, or the default one
func getThemesDir(configValue string) string {
	if strings.TrimSpace(configValue) != "" {
		return expandPath(configValue)
	}
	return config.DefaultThemesDir()
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}

// runSetup writes the default configuration and theme unless they exist
func runSetup(configPath string) error {
	fmt.Println("mailpilot setup")
	fmt.Println("===============")
	fmt.Println()

	if configPath == "" {
		return errors.New("cannot determine a config path; pass --config")
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Configuration file already exists: %s\n", configPath)
	} else {
		if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
			return fmt.Errorf("create config: %w", err)
		}
		fmt.Printf("Created configuration file: %s\n", configPath)
	}

	themesDir := config.DefaultThemesDir()
	themePath := filepath.Join(themesDir, config.DefaultThemeName+".yaml")
	if _, err := os.Stat(themePath); err == nil {
		fmt.Printf("Theme already exists: %s\n", themePath)
	} else if themesDir != "" {
		if err := config.NewThemeLoader(themesDir).SaveThemeToFile(config.DefaultColors(), config.DefaultThemeName+".yaml"); err != nil {
			return fmt.Errorf("write theme: %w", err)
		}
		fmt.Printf("Created theme: %s\n", themePath)
	}

	fmt.Println()
	fmt.Println("Setup complete. Start the backend, then run:")
	fmt.Printf("   %s\n", os.Args[0])
	fmt.Println()
	fmt.Println("Tips:")
	fmt.Printf("- Set %s or api.base_url to point at another backend\n", config.EnvAPIURL)
	fmt.Println("- Key bindings live under \"keys\" in the config file")
	return nil
}
