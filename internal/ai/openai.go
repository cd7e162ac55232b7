package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"tokensentry/internal/models"
)

const systemPrompt = "You are a professional crypto token analyst. " +
	"You assess Solana tokens for risk and opportunity. " +
	"Always answer with a single JSON object and nothing else."

// OpenAIEnricher implements Enricher against the OpenAI chat API.
type OpenAIEnricher struct {
	client *openai.Client
	config Config
}

// NewOpenAIEnricher creates an LLM enricher. The model defaults from
// DefaultConfig when unset.
func NewOpenAIEnricher(config Config) *OpenAIEnricher {
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	return &OpenAIEnricher{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

// Infer asks the model for an independent score and narrative. The call is
// bounded by the configured timeout on top of any caller deadline.
func (e *OpenAIEnricher) Infer(ctx context.Context, input PromptInput) (*models.AIResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.GetTimeout())
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(input)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	return parseResult(resp.Choices[0].Message.Content)
}

func buildPrompt(input PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze Solana token %s.\n\n", input.TokenAddress)
	fmt.Fprintf(&b, "Security gate: passed=%t, critical issues=%d, warnings=%d\n",
		input.Security.Passed, len(input.Security.CriticalIssues), len(input.Security.Warnings))
	for _, w := range input.Security.Warnings {
		fmt.Fprintf(&b, "- warning: %s\n", w)
	}
	fmt.Fprintf(&b, "\nMarket metrics:\n")
	for _, m := range input.Metrics {
		fmt.Fprintf(&b, "- %s: value=%.2f bucket=%s points=%.0f\n", m.Name, m.Value, m.Bucket, m.Points)
	}
	fmt.Fprintf(&b, "\nTraditional composite score: %.1f/95\n", input.TraditionalScore)
	fmt.Fprintf(&b, "Data sources: %s\n\n", strings.Join(input.DataSources, ", "))
	b.WriteString(`Return JSON with this exact shape:
{
  "ai_score": <0-100>,
  "risk_assessment": "low|medium|high|critical",
  "recommendation": "BUY|CONSIDER|HOLD|CAUTION|AVOID",
  "confidence": <0-100>,
  "reasoning": "<short narrative>",
  "key_insights": ["..."],
  "risk_factors": ["..."]
}`)
	return b.String()
}

// parseResult decodes the model answer, tolerating markdown code fences.
func parseResult(content string) (*models.AIResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var res models.AIResult
	if err := json.Unmarshal([]byte(content), &res); err != nil {
		return nil, fmt.Errorf("failed to parse ai response: %w", err)
	}
	if res.AIScore < 0 || res.AIScore > 100 {
		return nil, fmt.Errorf("ai score %.1f out of range", res.AIScore)
	}
	return &res, nil
}
