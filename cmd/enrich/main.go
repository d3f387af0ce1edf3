package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/enrich"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		stageName  = flag.String("stage", "all", "Stage to run with -once: score, transfer, reason, or all")
		once       = flag.Bool("once", false, "Run one cycle and exit")
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

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	scorer, err := enrich.NewOpenAIScorer(apiKey, cfg.Enrich.ScoreModel, log)
	if err != nil {
		log.Fatal("Failed to create scorer", zap.Error(err))
	}
	reasoner, err := enrich.NewOpenAIReasoner(apiKey, cfg.Enrich.ReasonModel, log)
	if err != nil {
		log.Fatal("Failed to create reasoner", zap.Error(err))
	}

	stage := enrich.NewStage(
		scorer,
		reasoner,
		store.New(cfg.Pipeline.DatasetFile, log),
		store.New(cfg.Enrich.ScoredFile, log),
		store.New(cfg.Enrich.FinalFile, log),
		store.New(cfg.Enrich.ReviewFile, log),
		cfg.Enrich,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		var err error
		switch *stageName {
		case "score":
			_, err = stage.RunScore(ctx)
		case "transfer":
			_, err = stage.RunTransfer(ctx)
		case "reason":
			_, err = stage.RunReason(ctx)
		case "all":
			err = stage.RunCycle(ctx)
		default:
			log.Fatal("Unknown stage", zap.String("stage", *stageName))
		}
		if err != nil {
			log.Fatal("Stage failed", zap.Error(err))
		}
		return
	}

	if err := stage.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("Enrichment stopped", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
