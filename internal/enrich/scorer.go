package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/synth"
)

const scorerSystemPrompt = `You analyze anonymized social-media posts about a bank. Respond only with a JSON object with keys: scenario_type (string), sentiment_score (number -100..100), confidence (number 0..1), ambiguity_score (number 0..100), uncertain (bool), risk_level (low|medium|high), drivers (array of strings), explanation (string). No markdown, no commentary.`

// OpenAIScorer is the OpenAI-backed Scorer.
type OpenAIScorer struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// NewOpenAIScorer creates the scorer.
func NewOpenAIScorer(apiKey, model string, log *logger.Logger) (*OpenAIScorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return &OpenAIScorer{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: log.WithComponent("scorer"),
	}, nil
}

// Score implements Scorer.
func (s *OpenAIScorer) Score(ctx context.Context, record synth.AnonymizedRecord) (Analysis, error) {
	prompt := fmt.Sprintf("Source: %s\nPost: %s", record.SourceType, record.RawText)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scorerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("scoring completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("scoring response has no choices")
	}

	var analysis Analysis
	if err := decodeModelJSON(resp.Choices[0].Message.Content, &analysis); err != nil {
		return Analysis{}, fmt.Errorf("scoring response invalid: %w", err)
	}
	if analysis.ScenarioType == "" {
		return Analysis{}, fmt.Errorf("scoring response missing scenario_type")
	}
	return analysis, nil
}

// MapAnalysis applies the deterministic post-mapping that turns a model
// analysis into routing fields. High ambiguity with near-zero sentiment is
// noise: low urgency and never flagged, regardless of confidence.
// Otherwise low confidence escalates to critical urgency, and confidence
// below the threshold flags the signal for human review.
func MapAnalysis(record synth.AnonymizedRecord, a Analysis, threshold float64) ScoredSignal {
	category := a.ScenarioType
	urgency := riskToUrgency(a.RiskLevel)
	flagged := false

	if a.AmbiguityScore > 70 && math.Abs(a.SentimentScore) < 10 {
		category = ScenarioNoise
		urgency = UrgencyLow
	} else {
		if a.Confidence < 0.5 {
			urgency = UrgencyCritical
		}
		flagged = a.Confidence < threshold
	}

	return ScoredSignal{
		AnonymizedRecord:    record,
		ScenarioCategory:    category,
		SentimentScore:      a.SentimentScore,
		Confidence:          a.Confidence,
		ShadowReviewUrgency: urgency,
		IsFlaggedForReview:  flagged,
	}
}

func riskToUrgency(risk string) string {
	switch strings.ToLower(risk) {
	case "high":
		return UrgencyHigh
	case "medium":
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// decodeModelJSON decodes a model reply into v, tolerating a surrounding
// markdown code fence.
func decodeModelJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	return nil
}
