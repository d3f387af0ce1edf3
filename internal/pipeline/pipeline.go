package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/corpus"
	"github.com/adanbank/signal-sentinel/internal/generator"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/synth"
)

// Pipeline drives the generate → synthesize → scrub → validate → persist
// cycle. Batches run strictly sequentially; counters live here, not in
// package globals.
type Pipeline struct {
	gen      generator.BatchGenerator
	synth    *synth.Synthesizer
	scrubber Scrubber
	dataset  *store.Store
	cfg      config.PipelineConfig
	rng      *rand.Rand
	logger   *logger.Logger

	batches        int64
	totalRecords   int64
	generatorCalls int64
}

// New creates a pipeline.
func New(gen generator.BatchGenerator, syn *synth.Synthesizer, scr Scrubber, dataset *store.Store, cfg config.PipelineConfig, seed int64, log *logger.Logger) *Pipeline {
	return &Pipeline{
		gen:      gen,
		synth:    syn,
		scrubber: scr,
		dataset:  dataset,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   log.WithComponent("pipeline"),
	}
}

// ExecuteBatch runs one batch of n records. A generator boundary failure
// fails the whole batch: nothing is synthesized or persisted. Validation
// failure is reported but never blocks persistence.
func (p *Pipeline) ExecuteBatch(ctx context.Context, n int) (*BatchReport, error) {
	start := time.Now()
	p.batches++
	log := p.logger.WithBatch(p.batches)

	categories := make([]corpus.Category, n)
	for i := range categories {
		categories[i] = corpus.Categories[p.rng.Intn(len(corpus.Categories))]
	}

	p.generatorCalls++
	texts, err := p.gen.GenerateBatch(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("batch %d generation failed: %w", p.batches, err)
	}

	records, err := p.synth.Synthesize(texts, categories)
	if err != nil {
		return nil, fmt.Errorf("batch %d synthesis failed: %w", p.batches, err)
	}

	anonymized := make([]synth.AnonymizedRecord, 0, len(records))
	piiMasked := 0
	for _, r := range records {
		result := p.scrubber.Scrub(r.RawText)
		r.RawText = result.MaskedText
		piiMasked += result.Count
		anonymized = append(anonymized, synth.AnonymizedRecord{
			Record:           r,
			PIIScrubbedCount: result.Count,
		})
	}

	issues := ValidateBatch(anonymized, p.scrubber)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Warn("validation issue", zap.String("issue", issue))
		}
	}

	total, err := p.dataset.Append(anonymized)
	if err != nil {
		return nil, fmt.Errorf("batch %d persistence failed: %w", p.batches, err)
	}
	p.totalRecords += int64(len(anonymized))

	report := &BatchReport{
		BatchNumber:      p.batches,
		Duration:         time.Since(start),
		RecordsRequested: n,
		RecordsPersisted: len(anonymized),
		TotalRecords:     total,
		PIIMasked:        piiMasked,
		ValidationPassed: len(issues) == 0,
		Issues:           issues,
		GeneratorCalls:   1,
	}

	log.Info("batch complete",
		zap.Int("records", report.RecordsPersisted),
		zap.Int("pii_masked", report.PIIMasked),
		zap.Bool("validation_passed", report.ValidationPassed),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// Run executes batches forever with the configured interval between them.
// Cancellation is only observed between batches, so an in-flight batch
// always completes. A failed batch is logged and retried after the
// interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("continuous generation started",
		zap.Duration("interval", p.cfg.Interval),
		zap.Int("min_records", p.cfg.MinRecords),
		zap.Int("max_records", p.cfg.MaxRecords))

	for {
		n := p.cfg.MinRecords
		if p.cfg.MaxRecords > p.cfg.MinRecords {
			n += p.rng.Intn(p.cfg.MaxRecords - p.cfg.MinRecords + 1)
		}

		if _, err := p.ExecuteBatch(ctx, n); err != nil {
			p.logger.Error("batch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("continuous generation stopped",
				zap.Int64("batches", p.batches),
				zap.Int64("records", p.totalRecords))
			return ctx.Err()
		case <-time.After(p.cfg.Interval):
		}
	}
}

// Stats returns lifetime batch counters.
func (p *Pipeline) Stats() (batches, records, calls int64) {
	return p.batches, p.totalRecords, p.generatorCalls
}
