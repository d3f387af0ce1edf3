package enrich

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/synth"
)

// Stage runs the downstream enrichment cycle: score the anonymized
// dataset, transfer scored signals to the final file, then reason over
// them into the review queue. Each hand-off wipes its source after the
// destination write succeeds.
type Stage struct {
	scorer   Scorer
	reasoner Reasoner
	dataset  *store.Store
	scored   *store.Store
	final    *store.Store
	review   *store.Store
	cfg      config.EnrichConfig
	logger   *logger.Logger
}

// NewStage creates the enrichment stage runner.
func NewStage(scorer Scorer, reasoner Reasoner, dataset, scored, final, review *store.Store, cfg config.EnrichConfig, log *logger.Logger) *Stage {
	return &Stage{
		scorer:   scorer,
		reasoner: reasoner,
		dataset:  dataset,
		scored:   scored,
		final:    final,
		review:   review,
		cfg:      cfg,
		logger:   log.WithComponent("enrich"),
	}
}

// RunScore scores every record in the dataset file into the scored file
// and wipes the dataset on success. A per-record scoring error skips that
// record and never aborts the cycle.
func (s *Stage) RunScore(ctx context.Context) (int, error) {
	records, err := store.ReadAs[synth.AnonymizedRecord](s.dataset)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	scored := make([]ScoredSignal, 0, len(records))
	for _, r := range records {
		analysis, err := s.scorer.Score(ctx, r)
		if err != nil {
			s.logger.Error("scoring failed, skipping record",
				zap.String("synthetic_id", r.SyntheticID), zap.Error(err))
			continue
		}
		scored = append(scored, MapAnalysis(r, analysis, s.cfg.ConfidenceThreshold))
	}

	if len(scored) > 0 {
		if _, err := s.scored.Append(scored); err != nil {
			return 0, fmt.Errorf("failed to persist scored signals: %w", err)
		}
	}
	if err := s.dataset.Wipe(); err != nil {
		return 0, fmt.Errorf("failed to wipe dataset after scoring: %w", err)
	}

	s.logger.Info("scoring cycle complete",
		zap.Int("input", len(records)), zap.Int("scored", len(scored)))
	return len(scored), nil
}

// RunTransfer moves scored signals into the final file.
func (s *Stage) RunTransfer(ctx context.Context) (int, error) {
	return store.Transfer(s.scored, s.final)
}

// RunReason reasons over every signal in the final file into the review
// queue and wipes the final file on success. Records failing schema checks
// or reasoning are skipped with a logged error.
func (s *Stage) RunReason(ctx context.Context) (int, error) {
	signals, err := store.ReadAs[ScoredSignal](s.final)
	if err != nil {
		return 0, err
	}
	if len(signals) == 0 {
		return 0, nil
	}

	reviewed := make([]ReviewSignal, 0, len(signals))
	for _, sig := range signals {
		if err := validateScored(sig); err != nil {
			s.logger.Error("invalid scored signal, skipping",
				zap.String("synthetic_id", sig.SyntheticID), zap.Error(err))
			continue
		}

		confidence := ComputeConfidence(sig)
		expl, err := s.reasoner.Reason(ctx, sig, confidence)
		if err != nil {
			s.logger.Error("reasoning failed, skipping signal",
				zap.String("synthetic_id", sig.SyntheticID), zap.Error(err))
			continue
		}

		reviewed = append(reviewed, ReviewSignal{
			ScoredSignal:              sig,
			ReasoningExplanation:      expl.ExplanationText,
			ReasoningImpactAssessment: expl.ImpactAssessment,
			ReasoningSuggestedAction:  expl.SuggestedAction,
			ReasoningConfidence:       confidence,
		})
	}

	if len(reviewed) > 0 {
		if _, err := s.review.Append(reviewed); err != nil {
			return 0, fmt.Errorf("failed to persist review signals: %w", err)
		}
	}
	if err := s.final.Wipe(); err != nil {
		return 0, fmt.Errorf("failed to wipe final file after reasoning: %w", err)
	}

	s.logger.Info("reasoning cycle complete",
		zap.Int("input", len(signals)), zap.Int("reviewed", len(reviewed)))
	return len(reviewed), nil
}

func validateScored(sig ScoredSignal) error {
	switch {
	case sig.SyntheticID == "":
		return fmt.Errorf("missing synthetic_id")
	case sig.RawText == "":
		return fmt.Errorf("missing raw_text")
	case sig.ScenarioCategory == "":
		return fmt.Errorf("missing scenario_category")
	case sig.ShadowReviewUrgency == "":
		return fmt.Errorf("missing shadow_review_urgency")
	}
	return nil
}

// RunCycle executes one score → transfer → reason pass.
func (s *Stage) RunCycle(ctx context.Context) error {
	if _, err := s.RunScore(ctx); err != nil {
		return fmt.Errorf("score stage: %w", err)
	}
	if _, err := s.RunTransfer(ctx); err != nil {
		return fmt.Errorf("transfer stage: %w", err)
	}
	if _, err := s.RunReason(ctx); err != nil {
		return fmt.Errorf("reason stage: %w", err)
	}
	return nil
}

// Run executes cycles forever with the configured interval between them.
// Cancellation is observed between cycles only.
func (s *Stage) Run(ctx context.Context) error {
	s.logger.Info("enrichment loop started", zap.Duration("interval", s.cfg.Interval))

	for {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.Error("enrichment cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("enrichment loop stopped")
			return ctx.Err()
		case <-time.After(s.cfg.Interval):
		}
	}
}
