package enrich

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/synth"
)

func testRecord(id string) synth.AnonymizedRecord {
	return synth.AnonymizedRecord{
		Record: synth.Record{
			SyntheticID:        id,
			Timestamp:          "2026-01-01T00:00:00Z",
			RawText:            "some masked post",
			SourceType:         "social_media",
			Category:           synth.CategoryUnset,
			GenerationSequence: 1,
		},
	}
}

func TestMapAnalysis(t *testing.T) {
	record := testRecord("id-1")

	tests := []struct {
		name     string
		analysis Analysis
		category string
		urgency  string
		flagged  bool
	}{
		{
			name: "ambiguous near-zero sentiment becomes noise",
			analysis: Analysis{
				ScenarioType: "fee_complaint", SentimentScore: 5,
				Confidence: 0.9, AmbiguityScore: 80, RiskLevel: "high",
			},
			category: ScenarioNoise,
			urgency:  UrgencyLow,
		},
		{
			name: "low confidence noise stays unflagged",
			analysis: Analysis{
				ScenarioType: "unclear_mention", SentimentScore: 3,
				Confidence: 0.4, AmbiguityScore: 85, RiskLevel: "medium",
			},
			category: ScenarioNoise,
			urgency:  UrgencyLow,
			flagged:  false,
		},
		{
			name: "low confidence escalates to critical and flags",
			analysis: Analysis{
				ScenarioType: "account_freeze", SentimentScore: -60,
				Confidence: 0.4, AmbiguityScore: 20, RiskLevel: "low",
			},
			category: "account_freeze",
			urgency:  UrgencyCritical,
			flagged:  true,
		},
		{
			name: "mid confidence flags without escalating",
			analysis: Analysis{
				ScenarioType: "service_praise", SentimentScore: 70,
				Confidence: 0.6, AmbiguityScore: 10, RiskLevel: "medium",
			},
			category: "service_praise",
			urgency:  UrgencyMedium,
			flagged:  true,
		},
		{
			name: "confident high risk",
			analysis: Analysis{
				ScenarioType: "outage_report", SentimentScore: -80,
				Confidence: 0.95, AmbiguityScore: 5, RiskLevel: "high",
			},
			category: "outage_report",
			urgency:  UrgencyHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapAnalysis(record, tt.analysis, 0.70)
			if got.ScenarioCategory != tt.category {
				t.Errorf("category = %q, want %q", got.ScenarioCategory, tt.category)
			}
			if got.ShadowReviewUrgency != tt.urgency {
				t.Errorf("urgency = %q, want %q", got.ShadowReviewUrgency, tt.urgency)
			}
			if got.IsFlaggedForReview != tt.flagged {
				t.Errorf("flagged = %v, want %v", got.IsFlaggedForReview, tt.flagged)
			}
		})
	}
}

func TestComputeConfidence(t *testing.T) {
	tests := []struct {
		name   string
		signal ScoredSignal
		want   float64
	}{
		{
			name:   "base",
			signal: ScoredSignal{ShadowReviewUrgency: UrgencyLow},
			want:   0.5,
		},
		{
			name:   "flagged only",
			signal: ScoredSignal{IsFlaggedForReview: true, ShadowReviewUrgency: UrgencyLow},
			want:   0.65,
		},
		{
			name:   "high urgency",
			signal: ScoredSignal{ShadowReviewUrgency: UrgencyHigh},
			want:   0.6,
		},
		{
			name:   "moderately negative sentiment",
			signal: ScoredSignal{ShadowReviewUrgency: UrgencyLow, SentimentScore: -50},
			want:   0.6,
		},
		{
			name:   "strongly negative sentiment",
			signal: ScoredSignal{ShadowReviewUrgency: UrgencyLow, SentimentScore: -85},
			want:   0.65,
		},
		{
			name: "capped at one",
			signal: ScoredSignal{
				IsFlaggedForReview:  true,
				ShadowReviewUrgency: UrgencyCritical,
				SentimentScore:      -90,
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeConfidence(tt.signal)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("confidence = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Run("fenced object", func(t *testing.T) {
		var a Analysis
		raw := "```json\n{\"scenario_type\": \"fee_complaint\", \"confidence\": 0.8}\n```"
		if err := decodeModelJSON(raw, &a); err != nil {
			t.Fatalf("decodeModelJSON: %v", err)
		}
		if a.ScenarioType != "fee_complaint" || a.Confidence != 0.8 {
			t.Errorf("unexpected analysis: %+v", a)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		var a Analysis
		if err := decodeModelJSON("not json at all", &a); err == nil {
			t.Error("expected error")
		}
	})
}

type fakeScorer struct {
	failID string
}

func (f fakeScorer) Score(ctx context.Context, r synth.AnonymizedRecord) (Analysis, error) {
	if r.SyntheticID == f.failID {
		return Analysis{}, errors.New("model refused")
	}
	return Analysis{
		ScenarioType: "fee_complaint", SentimentScore: -60,
		Confidence: 0.6, AmbiguityScore: 10, RiskLevel: "medium",
	}, nil
}

type fakeReasoner struct {
	failID string
}

func (f fakeReasoner) Reason(ctx context.Context, sig ScoredSignal, confidence float64) (Explanation, error) {
	if sig.SyntheticID == f.failID {
		return Explanation{}, errors.New("model refused")
	}
	return Explanation{
		ExplanationText: "customers are upset about fees",
		ImpactAssessment: ImpactAssessment{
			CustomerImpact: "medium", ReputationalImpact: "low", RegulatoryImpact: "low",
		},
		SuggestedAction: "route to fee policy team",
	}, nil
}

func newTestStage(t *testing.T, scorer Scorer, reasoner Reasoner) (*Stage, *store.Store, *store.Store, *store.Store, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	dataset := store.New(filepath.Join(dir, "dataset.json"), logger.Nop())
	scored := store.New(filepath.Join(dir, "scored.json"), logger.Nop())
	final := store.New(filepath.Join(dir, "final.json"), logger.Nop())
	review := store.New(filepath.Join(dir, "review.json"), logger.Nop())
	cfg := config.EnrichConfig{ConfidenceThreshold: 0.70, Interval: 1}
	return NewStage(scorer, reasoner, dataset, scored, final, review, cfg, logger.Nop()),
		dataset, scored, final, review
}

func TestRunScoreSkipsFailures(t *testing.T) {
	stage, dataset, scored, _, _ := newTestStage(t, fakeScorer{failID: "id-2"}, fakeReasoner{})

	if _, err := dataset.Append([]synth.AnonymizedRecord{testRecord("id-1"), testRecord("id-2")}); err != nil {
		t.Fatal(err)
	}

	n, err := stage.RunScore(context.Background())
	if err != nil {
		t.Fatalf("RunScore: %v", err)
	}
	if n != 1 {
		t.Errorf("scored = %d, want 1 (failure skipped)", n)
	}

	if count, _ := dataset.Count(); count != 0 {
		t.Errorf("dataset count = %d, want 0 after wipe", count)
	}
	signals, err := store.ReadAs[ScoredSignal](scored)
	if err != nil {
		t.Fatal(err)
	}
	if len(signals) != 1 || signals[0].SyntheticID != "id-1" {
		t.Errorf("unexpected scored signals: %+v", signals)
	}
	if signals[0].ScenarioCategory != "fee_complaint" {
		t.Errorf("category = %q", signals[0].ScenarioCategory)
	}
	if !signals[0].IsFlaggedForReview {
		t.Error("confidence 0.6 under threshold 0.7 should flag")
	}
}

func TestRunCycleEndToEnd(t *testing.T) {
	stage, dataset, scored, final, review := newTestStage(t, fakeScorer{}, fakeReasoner{})

	if _, err := dataset.Append([]synth.AnonymizedRecord{testRecord("id-1"), testRecord("id-2")}); err != nil {
		t.Fatal(err)
	}

	if err := stage.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	for name, s := range map[string]*store.Store{"dataset": dataset, "scored": scored, "final": final} {
		if count, _ := s.Count(); count != 0 {
			t.Errorf("%s count = %d, want 0 after full cycle", name, count)
		}
	}

	reviewed, err := store.ReadAs[ReviewSignal](review)
	if err != nil {
		t.Fatal(err)
	}
	if len(reviewed) != 2 {
		t.Fatalf("review count = %d, want 2", len(reviewed))
	}
	r := reviewed[0]
	if r.ReasoningExplanation == "" || r.ReasoningSuggestedAction == "" {
		t.Errorf("reasoning fields missing: %+v", r)
	}
	if r.ReasoningConfidence < 0.5 || r.ReasoningConfidence > 1.0 {
		t.Errorf("reasoning confidence out of range: %f", r.ReasoningConfidence)
	}
}

func TestRunReasonSkipsInvalid(t *testing.T) {
	stage, _, _, final, review := newTestStage(t, fakeScorer{}, fakeReasoner{})

	valid := ScoredSignal{
		AnonymizedRecord:    testRecord("id-1"),
		ScenarioCategory:    "fee_complaint",
		ShadowReviewUrgency: UrgencyMedium,
	}
	invalid := ScoredSignal{AnonymizedRecord: testRecord("id-2")} // no category/urgency

	if _, err := final.Append([]ScoredSignal{valid, invalid}); err != nil {
		t.Fatal(err)
	}

	n, err := stage.RunReason(context.Background())
	if err != nil {
		t.Fatalf("RunReason: %v", err)
	}
	if n != 1 {
		t.Errorf("reviewed = %d, want 1", n)
	}
	if count, _ := review.Count(); count != 1 {
		t.Errorf("review count = %d, want 1", count)
	}
	if count, _ := final.Count(); count != 0 {
		t.Errorf("final count = %d, want 0 after wipe", count)
	}
}
