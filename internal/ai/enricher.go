// Package ai provides the optional LLM enrichment step. The model is an
// untrusted, latency-variable oracle: callers bound it with a timeout and
// must treat any failure as "proceed without AI".
package ai

import (
	"context"
	"time"

	"tokensentry/internal/models"
)

// PromptInput summarizes the pipeline state the model is asked to judge.
type PromptInput struct {
	TokenAddress     string
	Security         models.SecurityVerdict
	Metrics          []models.MetricResult
	TraditionalScore float64
	DataSources      []string
}

// Enricher is the LLM collaborator interface.
type Enricher interface {
	Infer(ctx context.Context, input PromptInput) (*models.AIResult, error)
}

// Config holds LLM client settings.
type Config struct {
	Enabled     bool   `yaml:"enabled"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GetTimeout returns the inference timeout as a time.Duration.
func (c Config) GetTimeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// DefaultConfig returns conservative LLM settings.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Model:       "gpt-4o-mini",
		TimeoutSecs: 20,
	}
}
