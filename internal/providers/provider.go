// Package providers implements the data-source clients the analysis engine
// fans out to. Every client returns a ServiceResult value; network failures,
// timeouts, and HTTP errors are encoded in the result status and never
// surface as Go errors to the caller.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"tokensentry/internal/models"
	"tokensentry/internal/telemetry"
)

// Provider is the collaborator interface the engine fans out to.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, tokenAddress string) models.ServiceResult
}

// ClientConfig holds per-provider settings.
type ClientConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	RPM         int    `yaml:"rpm"`
}

// GetTimeout returns the request timeout as a time.Duration.
func (c ClientConfig) GetTimeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Config holds settings for all supported providers.
type Config struct {
	GoPlus      ClientConfig `yaml:"goplus"`
	RugCheck    ClientConfig `yaml:"rugcheck"`
	SolSniffer  ClientConfig `yaml:"solsniffer"`
	Birdeye     ClientConfig `yaml:"birdeye"`
	DexScreener ClientConfig `yaml:"dexscreener"`
	Helius      ClientConfig `yaml:"helius"`
	SolanaFM    ClientConfig `yaml:"solanafm"`
}

// DefaultConfig returns production provider endpoints with free-tier rate
// budgets.
func DefaultConfig() Config {
	return Config{
		GoPlus: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://api.gopluslabs.io/api/v1",
			TimeoutSecs: 8,
			RPM:         30,
		},
		RugCheck: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://api.rugcheck.xyz/v1",
			TimeoutSecs: 8,
			RPM:         30,
		},
		SolSniffer: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://solsniffer.com/api/v2",
			TimeoutSecs: 8,
			RPM:         20,
		},
		Birdeye: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://public-api.birdeye.so",
			TimeoutSecs: 8,
			RPM:         50,
		},
		DexScreener: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://api.dexscreener.com/latest",
			TimeoutSecs: 8,
			RPM:         60,
		},
		Helius: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://api.helius.xyz",
			TimeoutSecs: 8,
			RPM:         50,
		},
		SolanaFM: ClientConfig{
			Enabled:     true,
			BaseURL:     "https://api.solana.fm/v1",
			TimeoutSecs: 8,
			RPM:         30,
		},
	}
}

// Build constructs all enabled providers. metrics may be nil in tests.
func Build(cfg Config, metrics *telemetry.Registry) []Provider {
	var all []Provider
	add := func(p Provider, c ClientConfig) {
		if c.Enabled {
			all = append(all, p)
		}
	}
	add(NewGoPlus(cfg.GoPlus, metrics), cfg.GoPlus)
	add(NewRugCheck(cfg.RugCheck, metrics), cfg.RugCheck)
	add(NewSolSniffer(cfg.SolSniffer, metrics), cfg.SolSniffer)
	add(NewBirdeye(cfg.Birdeye, metrics), cfg.Birdeye)
	add(NewDexScreener(cfg.DexScreener, metrics), cfg.DexScreener)
	add(NewHelius(cfg.Helius, metrics), cfg.Helius)
	add(NewSolanaFM(cfg.SolanaFM, metrics), cfg.SolanaFM)
	return all
}

// client is the shared HTTP plumbing: one rate limiter and one circuit
// breaker per provider.
type client struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	headers map[string]string
	metrics *telemetry.Registry
}

func newClient(name string, cfg ClientConfig, headers map[string]string, metrics *telemetry.Registry) *client {
	rpm := cfg.RPM
	if rpm <= 0 {
		rpm = 30
	}
	return &client{
		name:    name,
		http:    &http.Client{Timeout: cfg.GetTimeout()},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 2),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 2,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 4
			},
		}),
		headers: headers,
		metrics: metrics,
	}
}

// get performs one rate-limited, breaker-guarded GET and returns the raw
// body. Callers wrap the outcome into a ServiceResult via result().
func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, "")
}

func (c *client) do(ctx context.Context, method, url string, body io.Reader, contentType string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("http %d from %s", resp.StatusCode, c.name)
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// result wraps a fetch outcome into a ServiceResult, classifying timeouts
// separately from other failures.
func (c *client) result(start time.Time, payload []byte, err error) models.ServiceResult {
	res := models.ServiceResult{
		Source:    c.name,
		FetchedAt: start,
	}
	switch {
	case err == nil:
		res.Status = models.SourceOK
		res.Payload = payload
	case errors.Is(err, context.DeadlineExceeded):
		res.Status = models.SourceTimeout
		res.ErrDetail = err.Error()
	default:
		res.Status = models.SourceError
		res.ErrDetail = err.Error()
	}
	if c.metrics != nil {
		c.metrics.ObserveProvider(c.name, string(res.Status), time.Since(start))
	}
	return res
}
