package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/easycheck/internal/config"
	"github.com/hamed0406/easycheck/internal/httpapi"
	"github.com/hamed0406/easycheck/internal/logging"
	"github.com/hamed0406/easycheck/internal/status"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	manager, err := status.NewManagerFromConfig(cfg, logger)
	if err != nil {
		logger.Error("invalid_check_configuration", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go manager.Run(ctx)

	api := httpapi.NewServer(logger, manager.Holder())
	srv := &http.Server{Addr: cfg.BindHost, Handler: api.Router()}

	go func() {
		<-ctx.Done()
		logger.Info("quit_signal_received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.BindHost),
		zap.Duration("revalidate_interval", cfg.RevalidateInterval),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve_error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
