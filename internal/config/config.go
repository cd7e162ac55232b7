// Package config loads the service configuration. Precedence is
// defaults < YAML file < environment, so a container can run with no file
// at all and still override secrets from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tokensentry/internal/ai"
	"tokensentry/internal/gates"
	"tokensentry/internal/providers"
)

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs    int    `yaml:"write_timeout_secs"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

// GetReadTimeout returns the read timeout as a time.Duration.
func (c HTTPConfig) GetReadTimeout() time.Duration {
	return secsOr(c.ReadTimeoutSecs, 15*time.Second)
}

// GetWriteTimeout returns the write timeout as a time.Duration.
func (c HTTPConfig) GetWriteTimeout() time.Duration {
	return secsOr(c.WriteTimeoutSecs, 60*time.Second)
}

// GetShutdownTimeout returns the graceful-shutdown budget.
func (c HTTPConfig) GetShutdownTimeout() time.Duration {
	return secsOr(c.ShutdownTimeoutSecs, 10*time.Second)
}

// CacheConfig selects the cache backend and per-event TTLs. An empty Redis
// address falls back to the in-process cache.
type CacheConfig struct {
	RedisAddr      string `yaml:"redis_addr"`
	TTLWebhookSecs int    `yaml:"ttl_webhook_secs"`
	TTLAPISecs     int    `yaml:"ttl_api_secs"`
	TTLQuickSecs   int    `yaml:"ttl_quick_secs"`
	TTLDeepSecs    int    `yaml:"ttl_deep_secs"`
}

// GetTTLWebhook returns the webhook-result cache lifetime.
func (c CacheConfig) GetTTLWebhook() time.Duration { return secsOr(c.TTLWebhookSecs, 2*time.Hour) }

// GetTTLAPI returns the API-result cache lifetime.
func (c CacheConfig) GetTTLAPI() time.Duration { return secsOr(c.TTLAPISecs, time.Hour) }

// GetTTLQuick returns the quick-analysis cache lifetime.
func (c CacheConfig) GetTTLQuick() time.Duration { return secsOr(c.TTLQuickSecs, 30*time.Minute) }

// GetTTLDeep returns the deep-analysis cache lifetime.
func (c CacheConfig) GetTTLDeep() time.Duration { return secsOr(c.TTLDeepSecs, 2*time.Hour) }

// HistoryConfig controls the optional Postgres analysis archive.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DSN         string `yaml:"dsn"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GetTimeout returns the per-query timeout.
func (c HistoryConfig) GetTimeout() time.Duration { return secsOr(c.TimeoutSecs, 5*time.Second) }

// PipelineConfig bounds the fan-out phase.
type PipelineConfig struct {
	SourceTimeoutSecs int `yaml:"source_timeout_secs"`
}

// GetSourceTimeout returns the per-source fetch deadline.
func (c PipelineConfig) GetSourceTimeout() time.Duration {
	return secsOr(c.SourceTimeoutSecs, 8*time.Second)
}

// Config is the full service configuration.
type Config struct {
	HTTP      HTTPConfig               `yaml:"http"`
	Cache     CacheConfig              `yaml:"cache"`
	History   HistoryConfig            `yaml:"history"`
	Pipeline  PipelineConfig           `yaml:"pipeline"`
	Gate      gates.SecurityGateConfig `yaml:"security_gate"`
	AI        ai.Config                `yaml:"ai"`
	Providers providers.Config         `yaml:"providers"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:                ":8080",
			ReadTimeoutSecs:     15,
			WriteTimeoutSecs:    60,
			ShutdownTimeoutSecs: 10,
		},
		Cache: CacheConfig{
			TTLWebhookSecs: 7200,
			TTLAPISecs:     3600,
			TTLQuickSecs:   1800,
			TTLDeepSecs:    7200,
		},
		History: HistoryConfig{
			TimeoutSecs: 5,
		},
		Pipeline: PipelineConfig{
			SourceTimeoutSecs: 8,
		},
		Gate:      gates.DefaultSecurityGateConfig(),
		AI:        ai.DefaultConfig(),
		Providers: providers.DefaultConfig(),
	}
}

// Load reads the YAML file at path (if non-empty) over the defaults, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays secrets and deployment knobs from the environment.
// Config files stay free of credentials.
func (c *Config) applyEnv() {
	setStr(&c.HTTP.Addr, "TOKENSENTRY_HTTP_ADDR")
	setStr(&c.Cache.RedisAddr, "TOKENSENTRY_REDIS_ADDR")

	if dsn := os.Getenv("TOKENSENTRY_POSTGRES_DSN"); dsn != "" {
		c.History.Enabled = true
		c.History.DSN = dsn
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.AI.Enabled = true
		c.AI.APIKey = key
	}
	setStr(&c.AI.Model, "TOKENSENTRY_AI_MODEL")

	setStr(&c.Providers.GoPlus.APIKey, "GOPLUS_API_KEY")
	setStr(&c.Providers.RugCheck.APIKey, "RUGCHECK_API_KEY")
	setStr(&c.Providers.SolSniffer.APIKey, "SOLSNIFFER_API_KEY")
	setStr(&c.Providers.Birdeye.APIKey, "BIRDEYE_API_KEY")
	setStr(&c.Providers.Helius.APIKey, "HELIUS_API_KEY")
	setStr(&c.Providers.SolanaFM.APIKey, "SOLANAFM_API_KEY")
}

func setStr(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func secsOr(secs int, fallback time.Duration) time.Duration {
	if secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
