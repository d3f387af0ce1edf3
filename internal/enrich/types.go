package enrich

import (
	"context"

	"github.com/adanbank/signal-sentinel/internal/synth"
)

// Urgency levels for shadow review routing.
const (
	UrgencyCritical = "Critical"
	UrgencyHigh     = "High"
	UrgencyMedium   = "Medium"
	UrgencyLow      = "Low"
)

// ScenarioNoise marks a signal judged too ambiguous to categorize.
const ScenarioNoise = "noise"

// Analysis is the strict JSON contract returned by the scoring model.
type Analysis struct {
	ScenarioType   string   `json:"scenario_type"`
	SentimentScore float64  `json:"sentiment_score"` // -100..100
	Confidence     float64  `json:"confidence"`      // 0..1
	AmbiguityScore float64  `json:"ambiguity_score"` // 0..100
	Uncertain      bool     `json:"uncertain"`
	RiskLevel      string   `json:"risk_level"`
	Drivers        []string `json:"drivers"`
	Explanation    string   `json:"explanation"`
}

// ScoredSignal is an anonymized record after scenario scoring.
type ScoredSignal struct {
	synth.AnonymizedRecord
	ScenarioCategory    string  `json:"scenario_category"`
	SentimentScore      float64 `json:"sentiment_score"`
	Confidence          float64 `json:"confidence"`
	ShadowReviewUrgency string  `json:"shadow_review_urgency"`
	IsFlaggedForReview  bool    `json:"is_flagged_for_review"`
}

// ImpactAssessment is the three-axis impact estimate from the reasoner.
type ImpactAssessment struct {
	CustomerImpact     string `json:"customer_impact"`
	ReputationalImpact string `json:"reputational_impact"`
	RegulatoryImpact   string `json:"regulatory_impact"`
}

// Explanation is the reasoning model's JSON contract.
type Explanation struct {
	ExplanationText  string           `json:"explanation_text"`
	ImpactAssessment ImpactAssessment `json:"impact_assessment"`
	SuggestedAction  string           `json:"suggested_action"`
}

// ReviewSignal is a scored signal with reasoning fields attached, ready
// for the review dashboard.
type ReviewSignal struct {
	ScoredSignal
	ReasoningExplanation      string           `json:"reasoning_explanation"`
	ReasoningImpactAssessment ImpactAssessment `json:"reasoning_impact_assessment"`
	ReasoningSuggestedAction  string           `json:"reasoning_suggested_action"`
	ReasoningConfidence       float64          `json:"reasoning_confidence"`
}

// Scorer produces a scenario analysis for one record.
type Scorer interface {
	Score(ctx context.Context, record synth.AnonymizedRecord) (Analysis, error)
}

// Reasoner produces a review explanation for one scored signal.
type Reasoner interface {
	Reason(ctx context.Context, signal ScoredSignal, confidence float64) (Explanation, error)
}
