package providers

import (
	"context"
	"fmt"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// DexScreener queries the free DexScreener token-pairs API.
type DexScreener struct {
	*client
	baseURL string
}

func NewDexScreener(cfg ClientConfig, metrics *telemetry.Registry) *DexScreener {
	return &DexScreener{
		client:  newClient(normalize.SourceDexScreener, cfg, nil, metrics),
		baseURL: cfg.BaseURL,
	}
}

func (d *DexScreener) Name() string { return normalize.SourceDexScreener }

func (d *DexScreener) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()
	url := fmt.Sprintf("%s/dex/tokens/%s", d.baseURL, tokenAddress)
	payload, err := d.get(ctx, url)
	return d.result(start, payload, err)
}
