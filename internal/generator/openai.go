package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/corpus"
	"github.com/adanbank/signal-sentinel/internal/logger"
)

const systemPrompt = `You generate realistic social-media style posts about banks for a synthetic dataset. Posts mention the literal placeholder {bank_name} instead of a real bank name. Respond only with a JSON array of strings, one post per requested category, in the order given. No markdown, no commentary.`

// OpenAIGenerator is the OpenAI-backed BatchGenerator.
type OpenAIGenerator struct {
	client  *openai.Client
	corpus  *corpus.Corpus
	limiter *rate.Limiter
	cfg     config.GeneratorConfig
	logger  *logger.Logger
}

// NewOpenAIGenerator creates the generator. A missing API key is a
// configuration failure.
func NewOpenAIGenerator(apiKey string, cfg config.GeneratorConfig, c *corpus.Corpus, log *logger.Logger) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &OpenAIGenerator{
		client:  openai.NewClient(apiKey),
		corpus:  c,
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
		logger:  log.WithComponent("generator"),
	}, nil
}

// GenerateBatch implements BatchGenerator. It makes exactly one chat
// completion call regardless of batch size.
func (g *OpenAIGenerator) GenerateBatch(ctx context.Context, categories []corpus.Category) ([]string, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories requested")
	}

	prompt, err := g.buildPrompt(categories)
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, newContractViolation("response has no choices", "")
	}

	raw := resp.Choices[0].Message.Content
	texts, err := parseBatchResponse(raw, len(categories))
	if err != nil {
		return nil, err
	}

	g.logger.Debug("batch generated",
		zap.Int("requested", len(categories)),
		zap.Int("returned", len(texts)))

	return texts, nil
}

// buildPrompt assembles the single user prompt with sampled examples for
// every requested category.
func (g *OpenAIGenerator) buildPrompt(categories []corpus.Category) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d posts, one per line item below.\n\n", len(categories))

	sampled := make(map[corpus.Category][]string)
	for i, cat := range categories {
		examples, ok := sampled[cat]
		if !ok {
			if g.corpus.PoolSize(cat) == 0 {
				return "", &EmptyPoolError{Category: cat}
			}
			examples = g.corpus.Sample(cat, g.cfg.ExamplesPerCategory)
			sampled[cat] = examples
		}

		fmt.Fprintf(&b, "%d. Category: %s\n", i+1, cat)
		for _, ex := range examples {
			fmt.Fprintf(&b, "   Example: %s\n", ex)
		}
	}

	fmt.Fprintf(&b, "\nReturn a JSON array of exactly %d strings in the same order. Use {bank_name} wherever a bank is named.", len(categories))
	return b.String(), nil
}

// parseBatchResponse decodes the model reply, tolerating markdown fences,
// and enforces the batch contract.
func parseBatchResponse(raw string, want int) ([]string, error) {
	cleaned := stripFences(raw)

	var texts []string
	if err := json.Unmarshal([]byte(cleaned), &texts); err != nil {
		return nil, newContractViolation("response is not a JSON array of strings", raw)
	}
	if len(texts) != want {
		return nil, newContractViolation(
			fmt.Sprintf("expected %d texts, got %d", want, len(texts)), raw)
	}
	for i, t := range texts {
		t = strings.TrimSpace(t)
		t = strings.Trim(t, `"`)
		if t == "" {
			return nil, newContractViolation(fmt.Sprintf("text %d is empty", i), raw)
		}
		texts[i] = t
	}
	return texts, nil
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
