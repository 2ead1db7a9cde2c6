package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nishantmodak/ghost-admin/internal/api"
	"github.com/nishantmodak/ghost-admin/internal/config"
	"github.com/nishantmodak/ghost-admin/internal/ghost"
	"github.com/nishantmodak/ghost-admin/internal/history"
	"github.com/nishantmodak/ghost-admin/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	client, err := ghost.NewClient(cfg.GhostURL, cfg.GhostAdminKey,
		ghost.WithAPIVersion(cfg.GhostAPIVersion),
		ghost.WithRateLimit(cfg.GhostRPS, cfg.GhostBurst),
	)
	if err != nil {
		log.Error("invalid ghost admin key", "error", err)
		os.Exit(1)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 15*time.Second)
	if n, err := client.Ping(pingCtx); err != nil {
		log.Warn("ghost site unreachable at startup", "url", cfg.GhostURL, "error", err)
	} else {
		log.Info("connected to ghost", "url", cfg.GhostURL, "posts", n)
	}
	pingCancel()

	var (
		hist     *history.Store
		recorder pipeline.Recorder
		runs     api.RunReader
	)
	if cfg.HistoryDB != "" {
		hist, err = history.Open(cfg.HistoryDB)
		if err != nil {
			log.Error("open run history", "path", cfg.HistoryDB, "error", err)
			os.Exit(1)
		}
		recorder, runs = hist, hist
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, client, recorder, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, runs, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
		if hist != nil {
			hist.Close()
		}
	}()

	log.Info("starting ghost-admin", "port", cfg.Port, "dry_run", cfg.DryRun)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
