package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// Birdeye queries price and recent trades and merges both into a single
// payload so the normalizer sees one record per source.
type Birdeye struct {
	*client
	baseURL string
}

func NewBirdeye(cfg ClientConfig, metrics *telemetry.Registry) *Birdeye {
	headers := map[string]string{"x-chain": "solana"}
	if cfg.APIKey != "" {
		headers["X-API-KEY"] = cfg.APIKey
	}
	return &Birdeye{
		client:  newClient(normalize.SourceBirdeye, cfg, headers, metrics),
		baseURL: cfg.BaseURL,
	}
}

func (b *Birdeye) Name() string { return normalize.SourceBirdeye }

// birdeyeEnvelope is the common {"data": ...} wrapper Birdeye responses use.
type birdeyeEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (b *Birdeye) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()

	combined := struct {
		Price  json.RawMessage `json:"price,omitempty"`
		Trades json.RawMessage `json:"trades,omitempty"`
	}{}

	priceURL := fmt.Sprintf("%s/defi/price?address=%s&include_liquidity=true", b.baseURL, tokenAddress)
	priceRaw, priceErr := b.get(ctx, priceURL)
	if priceErr == nil {
		var env birdeyeEnvelope
		if json.Unmarshal(priceRaw, &env) == nil {
			combined.Price = env.Data
		}
	}

	tradesURL := fmt.Sprintf("%s/defi/txs/token?address=%s&sort_type=desc&limit=20", b.baseURL, tokenAddress)
	tradesRaw, tradesErr := b.get(ctx, tradesURL)
	if tradesErr == nil {
		var env birdeyeEnvelope
		if json.Unmarshal(tradesRaw, &env) == nil {
			combined.Trades = env.Data
		}
	}

	// Partial data is fine; only a double failure counts as a failed fetch.
	if priceErr != nil && tradesErr != nil {
		return b.result(start, nil, priceErr)
	}

	payload, err := json.Marshal(combined)
	return b.result(start, payload, err)
}
