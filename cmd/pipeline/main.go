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

	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/corpus"
	"github.com/adanbank/signal-sentinel/internal/generator"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/pipeline"
	"github.com/adanbank/signal-sentinel/internal/privacy"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/synth"
)

// passthroughScrubber is used when privacy masking is explicitly disabled.
type passthroughScrubber struct{}

func (passthroughScrubber) Scrub(text string) privacy.ScrubResult {
	return privacy.ScrubResult{MaskedText: text}
}

func (passthroughScrubber) ScanStructured(text string) []privacy.Finding {
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		once       = flag.Bool("once", false, "Execute a single batch and exit")
		records    = flag.Int("records", 0, "Batch size for -once (defaults to pipeline.max_records)")
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

	c, err := corpus.Load(cfg.Training.File, time.Now().UnixNano(), log)
	if err != nil {
		log.Fatal("Failed to load training corpus", zap.Error(err))
	}

	gen, err := generator.NewOpenAIGenerator(apiKey, cfg.Generator, c, log)
	if err != nil {
		log.Fatal("Failed to create generator", zap.Error(err))
	}

	var scrub pipeline.Scrubber
	if cfg.Privacy.Enabled {
		var names privacy.NameRecognizer
		if cfg.Privacy.Names.Enabled {
			if cfg.Privacy.Names.ModelPath != "" && privacy.ONNXAvailable {
				names, err = privacy.NewModelRecognizer(cfg.Privacy.Names.ModelPath)
				if err != nil {
					log.Fatal("Failed to load name recognition model", zap.Error(err))
				}
			} else {
				names = privacy.NewLexiconRecognizer()
			}
		}
		scrub, err = privacy.NewScrubber(cfg.Privacy.Sentinel, cfg.Privacy.Detectors, names, log)
		if err != nil {
			log.Fatal("Failed to create PII scrubber", zap.Error(err))
		}
	} else {
		log.Warn("privacy masking is disabled, raw text will be persisted")
		scrub = passthroughScrubber{}
	}

	dataset := store.New(cfg.Pipeline.DatasetFile, log)
	syn := synth.New(time.Now().UnixNano(), log)
	p := pipeline.New(gen, syn, scrub, dataset, cfg.Pipeline, time.Now().UnixNano(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		n := *records
		if n <= 0 {
			n = cfg.Pipeline.MaxRecords
		}
		report, err := p.ExecuteBatch(ctx, n)
		if err != nil {
			log.Fatal("Batch failed", zap.Error(err))
		}
		log.Info("single batch done",
			zap.Int("records", report.RecordsPersisted),
			zap.Int("pii_masked", report.PIIMasked),
			zap.Bool("validation_passed", report.ValidationPassed))
		return
	}

	if err := p.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("Pipeline stopped", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
