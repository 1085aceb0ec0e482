package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajramos/mailpilot/internal/config"
	"github.com/ajramos/mailpilot/internal/devserver"
	"github.com/ajramos/mailpilot/internal/version"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	addrFlag := flag.String("addr", envOr("MAILPILOT_DEVSERVER_ADDR", "127.0.0.1:8000"), "Listen address")
	noDeleteFlag := flag.Bool("no-draft-delete", false, "Answer 404 on draft deletes, like backends without the route")
	debugFlag := flag.Bool("debug", false, "Run gin in debug mode")
	versionFlag := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	_ = config.LoadEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !*debugFlag {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr: *addrFlag,
		Handler: devserver.New(devserver.Options{
			Logger:             logger,
			DisableDraftDelete: *noDeleteFlag,
		}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting devserver", zap.String("addr", *addrFlag), zap.String("version", version.GetVersion()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server start failed", zap.Error(err))
	}
	logger.Info("devserver stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
