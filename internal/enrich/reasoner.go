package enrich

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

const reasonerSystemPrompt = `You write short review briefings for flagged social-media signals about a bank. Respond only with a JSON object with keys: explanation_text (string), impact_assessment (object with customer_impact, reputational_impact, regulatory_impact, each low|medium|high), suggested_action (string). No markdown, no commentary.`

// OpenAIReasoner is the OpenAI-backed Reasoner.
type OpenAIReasoner struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// NewOpenAIReasoner creates the reasoner.
func NewOpenAIReasoner(apiKey, model string, log *logger.Logger) (*OpenAIReasoner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return &OpenAIReasoner{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: log.WithComponent("reasoner"),
	}, nil
}

// Reason implements Reasoner.
func (r *OpenAIReasoner) Reason(ctx context.Context, signal ScoredSignal, confidence float64) (Explanation, error) {
	prompt := fmt.Sprintf(
		"Category: %s\nSentiment: %.1f\nUrgency: %s\nFlagged: %v\nReview confidence: %.2f\nPost: %s",
		signal.ScenarioCategory, signal.SentimentScore, signal.ShadowReviewUrgency,
		signal.IsFlaggedForReview, confidence, signal.RawText)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reasonerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Explanation{}, fmt.Errorf("reasoning completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Explanation{}, fmt.Errorf("reasoning response has no choices")
	}

	var expl Explanation
	if err := decodeModelJSON(resp.Choices[0].Message.Content, &expl); err != nil {
		return Explanation{}, fmt.Errorf("reasoning response invalid: %w", err)
	}
	if expl.ExplanationText == "" {
		return Explanation{}, fmt.Errorf("reasoning response missing explanation_text")
	}
	return expl, nil
}

// ComputeConfidence derives the deterministic review confidence from the
// scored signal: 0.5 base, raised by review flags, urgency, and strongly
// negative sentiment, capped at 1.0. Sentiment is on the -100..100 scale.
func ComputeConfidence(signal ScoredSignal) float64 {
	confidence := 0.5

	if signal.IsFlaggedForReview {
		confidence += 0.15
	}

	switch signal.ShadowReviewUrgency {
	case UrgencyCritical:
		confidence += 0.20
	case UrgencyHigh:
		confidence += 0.10
	}

	sentiment := signal.SentimentScore / 100.0
	if sentiment <= -0.8 {
		confidence += 0.15
	} else if sentiment <= -0.5 {
		confidence += 0.10
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
