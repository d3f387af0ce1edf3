package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/archive"
	"github.com/adanbank/signal-sentinel/internal/audit"
	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/dashboard"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/websocket"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		webFile    = flag.String("web", "web/dashboard.html", "Path to the dashboard page")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File: &logger.FileConfig{
			Enabled:  cfg.Logging.File.Enabled,
			Path:     cfg.Logging.File.Path,
			MaxSize:  cfg.Logging.File.MaxSize,
			MaxAge:   cfg.Logging.File.MaxAge,
			Compress: cfg.Logging.File.Compress,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *configPath != "" {
		if err := config.Watch(*configPath, func(updated *config.Config) {
			log.Info("configuration file changed, restart to apply",
				zap.Int("dashboard_port", updated.Dashboard.Port))
		}); err != nil {
			log.Warn("config watch unavailable", zap.Error(err))
		}
	}

	review := store.New(cfg.Enrich.ReviewFile, log)

	var auditLog audit.Log
	switch cfg.Audit.Backend {
	case "redis":
		auditLog, err = audit.NewRedisLog(cfg.Audit.RedisURL, cfg.Audit.KeyPrefix, log)
		if err != nil {
			log.Fatal("Failed to connect audit log", zap.Error(err))
		}
	default:
		auditLog = audit.NewMemoryLog()
	}
	defer auditLog.Close()

	var archiver dashboard.Archiver
	if cfg.Archive.Enabled {
		a, err := archive.New(cfg.Archive, log)
		if err != nil {
			log.Fatal("Failed to initialize archive", zap.Error(err))
		}
		defer a.Close()
		archiver = a
	}

	var hub *websocket.Hub
	if cfg.Dashboard.WebSocket.Enabled {
		hub = websocket.NewHub(websocket.HubConfig{
			BroadcastSignals:     cfg.Dashboard.WebSocket.BroadcastSignals,
			BroadcastResolutions: cfg.Dashboard.WebSocket.BroadcastResolutions,
			BroadcastSystem:      cfg.Dashboard.WebSocket.BroadcastSystem,
			BroadcastConnections: cfg.Dashboard.WebSocket.BroadcastConnections,
		}, log)
		go hub.Run()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if hub != nil {
		watcher := dashboard.NewWatcher(review, hub, log)
		go func() {
			if err := watcher.Run(ctx); err != nil && err != context.Canceled {
				log.Error("Review watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := dashboard.NewServer(review, auditLog, archiver, hub, *webFile, cfg.Dashboard, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutdown error", zap.Error(err))
		}
	}
	log.Info("Shutdown complete")
}
