package providers

import (
	"context"
	"fmt"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// GoPlus queries the GOplus Solana token security API.
type GoPlus struct {
	*client
	baseURL string
}

func NewGoPlus(cfg ClientConfig, metrics *telemetry.Registry) *GoPlus {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = cfg.APIKey
	}
	return &GoPlus{
		client:  newClient(normalize.SourceGoPlus, cfg, headers, metrics),
		baseURL: cfg.BaseURL,
	}
}

func (g *GoPlus) Name() string { return normalize.SourceGoPlus }

func (g *GoPlus) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()
	url := fmt.Sprintf("%s/solana/token_security?contract_addresses=%s", g.baseURL, tokenAddress)
	payload, err := g.get(ctx, url)
	return g.result(start, payload, err)
}
