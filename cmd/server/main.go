package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/config"
	"github.com/boosterdraft/draftd/internal/hub"
	"github.com/boosterdraft/draftd/internal/httpapi"
	"github.com/boosterdraft/draftd/internal/ledger"
	"github.com/boosterdraft/draftd/internal/registry"
)

func main() {
	os.Exit(run())
}

// run wires Config & Bootstrap (SPEC_FULL §4.7) together and blocks until
// the server is asked to shut down, returning the CLI exit code spec.md
// §6 specifies: 0 graceful, 1 configuration error, 2 bind failure.
func run() int {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		return 1
	}
	defer log.Sync()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		var usage *config.ErrUsage
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, usage.Error())
			return 1
		}
		log.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	store, err := registry.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		log.Error("failed to open data directory", zap.Error(err))
		return 1
	}

	lifecycle, closeLedger := buildLedger(cfg, log)
	defer closeLedger()

	hubConfig := hub.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		WarningThreshold:  cfg.WarningThreshold,
		ErrorThreshold:    cfg.ErrorThreshold,
	}

	reg, err := registry.Restore(context.Background(), store, lifecycle, hubConfig, log)
	if err != nil {
		log.Error("failed to restore drafts", zap.Error(err))
		return 1
	}

	deps := httpapi.Deps{
		Registry:       reg,
		Builtin:        catalog.BuiltinDatabase(),
		DefaultSeatCap: cfg.DefaultSeatCap,
		Log:            log,
	}
	handler := httpapi.SetupRoutes(deps, cfg.ContentDir, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.Int("port", cfg.Port))
		serveErr <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to bind", zap.Error(err))
			return 2
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ErrorThreshold)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful HTTP shutdown failed", zap.Error(err))
		}
	}

	if err := reg.Shutdown(); err != nil {
		log.Error("error shutting down drafts", zap.Error(err))
	}

	return 0
}

func buildLedger(cfg config.Config, log *zap.Logger) (hub.LifecycleRecorder, func()) {
	if cfg.PostgresDSN == "" {
		return ledger.NoopLedger{Log: log}, func() {}
	}

	l, err := ledger.Open(cfg.PostgresDSN, log)
	if err != nil {
		log.Warn("failed to open lifecycle ledger, falling back to logger-only stub", zap.Error(err))
		return ledger.NoopLedger{Log: log}, func() {}
	}
	return l, func() {
		if err := l.Close(); err != nil {
			log.Error("failed to close lifecycle ledger", zap.Error(err))
		}
	}
}
